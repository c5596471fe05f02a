package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const conversationTTL = 24 * time.Hour

// maxHistoryTurns caps per-phone history so a long-lived process does not grow
// without bound. Oldest exchanges are dropped first.
const maxHistoryTurns = 40

// HistoryStore keeps the ordered turns of each customer's conversation,
// keyed by normalized phone number. Turns alternate user/assistant because
// they are only ever appended as complete exchanges.
type HistoryStore interface {
	// Load returns the conversation turns for a phone, oldest first.
	// An unknown phone yields an empty history, not an error.
	Load(ctx context.Context, phone string) ([]ChatMessage, error)
	// AppendExchange appends a user turn followed by the assistant reply.
	AppendExchange(ctx context.Context, phone string, user, assistant ChatMessage) error
	// Phones lists every phone number with stored history.
	Phones(ctx context.Context) ([]string, error)
}

// MemoryHistoryStore is the in-process default used when Redis is not configured.
type MemoryHistoryStore struct {
	mu            sync.RWMutex
	conversations map[string][]ChatMessage
}

// NewMemoryHistoryStore creates an empty in-memory store.
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{
		conversations: make(map[string][]ChatMessage),
	}
}

var _ HistoryStore = (*MemoryHistoryStore)(nil)

func (s *MemoryHistoryStore) Load(_ context.Context, phone string) ([]ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.conversations[phone]
	out := make([]ChatMessage, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryHistoryStore) AppendExchange(_ context.Context, phone string, user, assistant ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.conversations[phone], user, assistant)
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	s.conversations[phone] = history
	return nil
}

func (s *MemoryHistoryStore) Phones(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	phones := make([]string, 0, len(s.conversations))
	for phone := range s.conversations {
		phones = append(phones, phone)
	}
	sort.Strings(phones)
	return phones, nil
}

// RedisHistoryStore persists conversation history as a JSON blob per phone
// with a 24h TTL, so replies survive process restarts.
type RedisHistoryStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

const historyPhoneSetKey = "conversation:phones"

// NewRedisHistoryStore creates a Redis-backed history store.
func NewRedisHistoryStore(redisClient *redis.Client, tracer trace.Tracer) *RedisHistoryStore {
	if redisClient == nil {
		panic("conversation: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("concierge.internal.conversation.history")
	}
	return &RedisHistoryStore{
		redis:  redisClient,
		tracer: tracer,
	}
}

var _ HistoryStore = (*RedisHistoryStore)(nil)

func (s *RedisHistoryStore) Load(ctx context.Context, phone string) ([]ChatMessage, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_history")
	defer span.End()

	data, err := s.redis.Get(ctx, conversationKey(phone)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return []ChatMessage{}, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load history: %w", err)
	}

	var history []ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode history: %w", err)
	}
	return history, nil
}

func (s *RedisHistoryStore) AppendExchange(ctx context.Context, phone string, user, assistant ChatMessage) error {
	ctx, span := s.tracer.Start(ctx, "conversation.append_exchange")
	defer span.End()

	history, err := s.Load(ctx, phone)
	if err != nil {
		return err
	}
	history = append(history, user, assistant)
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	data, err := json.Marshal(history)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal history: %w", err)
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, conversationKey(phone), data, conversationTTL)
	pipe.SAdd(ctx, historyPhoneSetKey, phone)
	pipe.Expire(ctx, historyPhoneSetKey, conversationTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist history: %w", err)
	}
	return nil
}

func (s *RedisHistoryStore) Phones(ctx context.Context) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.list_phones")
	defer span.End()

	phones, err := s.redis.SMembers(ctx, historyPhoneSetKey).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to list phones: %w", err)
	}
	sort.Strings(phones)
	return phones, nil
}

func conversationKey(phone string) string {
	return fmt.Sprintf("conversation:%s", phone)
}
