// Package dashboard mirrors conversation traffic to a live operator view:
// a per-phone transcript store plus a websocket relay for real-time events.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	transcriptKeyPrefix = "transcript:"
	transcriptPhonesKey = "transcript:phones"
	transcriptTTL       = 24 * time.Hour
	maxTranscriptLen    = 250
)

// Message is one transcript entry as shown on the dashboard.
type Message struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Direction string    `json:"direction"` // "inbound" or "outbound"
}

// Store persists per-phone transcripts for the dashboard.
type Store interface {
	Append(ctx context.Context, phone string, msg Message) error
	List(ctx context.Context, phone string, limit int64) ([]Message, error)
	Phones(ctx context.Context) ([]string, error)
}

// MemoryStore keeps transcripts in process memory. Used in tests and when
// Redis is not configured.
type MemoryStore struct {
	mu          sync.RWMutex
	transcripts map[string][]Message
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{transcripts: make(map[string][]Message)}
}

func (s *MemoryStore) Append(_ context.Context, phone string, msg Message) error {
	if phone == "" {
		return errors.New("dashboard: phone required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	transcript := append(s.transcripts[phone], msg)
	if len(transcript) > maxTranscriptLen {
		transcript = transcript[len(transcript)-maxTranscriptLen:]
	}
	s.transcripts[phone] = transcript
	return nil
}

func (s *MemoryStore) List(_ context.Context, phone string, limit int64) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	transcript := s.transcripts[phone]
	if limit > 0 && int64(len(transcript)) > limit {
		transcript = transcript[int64(len(transcript))-limit:]
	}
	out := make([]Message, len(transcript))
	copy(out, transcript)
	return out, nil
}

func (s *MemoryStore) Phones(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	phones := make([]string, 0, len(s.transcripts))
	for phone := range s.transcripts {
		phones = append(phones, phone)
	}
	sort.Strings(phones)
	return phones, nil
}

// RedisStore keeps transcripts in Redis lists with a rolling window and TTL,
// plus a set of known phones for enumeration.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewRedisStore creates a Redis-backed transcript store.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		return nil
	}
	return &RedisStore{
		redis:  redisClient,
		tracer: otel.Tracer("concierge.internal.dashboard.store"),
	}
}

func (s *RedisStore) Append(ctx context.Context, phone string, msg Message) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if phone == "" {
		return errors.New("dashboard: phone required")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("dashboard: marshal transcript message: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.store.append")
	defer span.End()

	key := transcriptKeyPrefix + phone
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -maxTranscriptLen, -1)
	pipe.Expire(ctx, key, transcriptTTL)
	pipe.SAdd(ctx, transcriptPhonesKey, phone)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("dashboard: append transcript message: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, phone string, limit int64) ([]Message, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.store.list")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = -limit
	}

	raw, err := s.redis.LRange(ctx, transcriptKeyPrefix+phone, start, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []Message{}, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("dashboard: list transcript: %w", err)
	}

	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (s *RedisStore) Phones(ctx context.Context) ([]string, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	phones, err := s.redis.SMembers(ctx, transcriptPhonesKey).Result()
	if err != nil {
		if err == redis.Nil {
			return []string{}, nil
		}
		return nil, fmt.Errorf("dashboard: list phones: %w", err)
	}
	sort.Strings(phones)
	return phones, nil
}
