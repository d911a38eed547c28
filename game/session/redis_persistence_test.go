package session

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/pushbox/game/engine"
)

// newTestRedis connects to PUSHBOX_TEST_REDIS_ADDR or skips the test
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("PUSHBOX_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PUSHBOX_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisPersistence(t *testing.T) {
	client := newTestRedis(t)
	prefix := "pushbox-test-" + uuid.NewString()
	rp, err := NewRedisPersistence(client, newLevelManager(t), RedisOptions{Prefix: prefix, TTL: time.Minute})
	require.NoError(t, err)

	m := NewManagerWithPersistence(rp)
	sess, err := m.Create("Red", "classic", engine.DefaultLevel())
	require.NoError(t, err)
	sess.Lock()
	sess.Engine.Apply(engine.Left())
	sess.Unlock()
	require.NoError(t, m.Save("red"))

	assert.True(t, rp.Exists("RED"))
	ids, err := rp.ListAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"red"}, ids)

	loaded, err := rp.Load("red")
	require.NoError(t, err)
	assert.Equal(t, engine.Coordinate{X: 3, Y: 0}, loaded.Engine.Actor())

	require.NoError(t, rp.Delete("red"))
	assert.False(t, rp.Exists("red"))
	assert.ErrorIs(t, rp.Delete("red"), ErrSessionNotFound)
	_, err = rp.Load("red")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestNewRedisPersistence_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	_, err := NewRedisPersistence(client, newLevelManager(t), RedisOptions{Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
