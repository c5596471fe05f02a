package conversation

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exchange(i int) (ChatMessage, ChatMessage) {
	return ChatMessage{Role: ChatRoleUser, Content: fmt.Sprintf("pregunta %d", i)},
		ChatMessage{Role: ChatRoleAssistant, Content: fmt.Sprintf("respuesta %d", i)}
}

func testHistoryStore(t *testing.T, store HistoryStore) {
	ctx := context.Background()

	history, err := store.Load(ctx, "+521")
	require.NoError(t, err)
	assert.Empty(t, history)

	for i := 1; i <= 3; i++ {
		user, assistant := exchange(i)
		require.NoError(t, store.AppendExchange(ctx, "+521", user, assistant))
	}

	history, err = store.Load(ctx, "+521")
	require.NoError(t, err)
	require.Len(t, history, 6)
	for i, msg := range history {
		if i%2 == 0 {
			assert.Equal(t, ChatRoleUser, msg.Role, "turn %d", i)
		} else {
			assert.Equal(t, ChatRoleAssistant, msg.Role, "turn %d", i)
		}
	}
	assert.Equal(t, "pregunta 1", history[0].Content)
	assert.Equal(t, "respuesta 3", history[5].Content)

	user, assistant := exchange(9)
	require.NoError(t, store.AppendExchange(ctx, "+522", user, assistant))

	phones, err := store.Phones(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"+521", "+522"}, phones)
}

func testHistoryStoreCap(t *testing.T, store HistoryStore) {
	ctx := context.Background()
	for i := 0; i < maxHistoryTurns; i++ {
		user, assistant := exchange(i)
		require.NoError(t, store.AppendExchange(ctx, "+521", user, assistant))
	}

	history, err := store.Load(ctx, "+521")
	require.NoError(t, err)
	require.Len(t, history, maxHistoryTurns)

	// Oldest exchanges fall off; alternation survives.
	assert.Equal(t, ChatRoleUser, history[0].Role)
	assert.NotEqual(t, "pregunta 0", history[0].Content)
	assert.Equal(t, fmt.Sprintf("respuesta %d", maxHistoryTurns-1), history[len(history)-1].Content)
}

func TestMemoryHistoryStore(t *testing.T) {
	testHistoryStore(t, NewMemoryHistoryStore())
}

func TestMemoryHistoryStoreCap(t *testing.T) {
	testHistoryStoreCap(t, NewMemoryHistoryStore())
}

func newRedisHistoryStore(t *testing.T) *RedisHistoryStore {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewRedisHistoryStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)
}

func TestRedisHistoryStore(t *testing.T) {
	testHistoryStore(t, newRedisHistoryStore(t))
}

func TestRedisHistoryStoreCap(t *testing.T) {
	testHistoryStoreCap(t, newRedisHistoryStore(t))
}

func TestRedisHistoryStoreExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisHistoryStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)
	ctx := context.Background()

	user, assistant := exchange(1)
	require.NoError(t, store.AppendExchange(ctx, "+521", user, assistant))

	mr.FastForward(conversationTTL + 1)

	history, err := store.Load(ctx, "+521")
	require.NoError(t, err)
	assert.Empty(t, history)
}
