package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/USSTM/courier-console/internal/cache"
	"github.com/USSTM/courier-console/internal/config"
	"github.com/USSTM/courier-console/internal/push"
	"github.com/USSTM/courier-console/internal/queue"
	"github.com/USSTM/courier-console/internal/rbac"
	"github.com/USSTM/courier-console/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := *config.Load()
	cfg.Redis.Addr = mr.Addr()
	cfg.Logging.Filename = ""
	return cfg
}

func TestNew(t *testing.T) {
	cfg := testConfig(t)

	c, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(c.Cleanup)

	assert.NotNil(t, c.Server)
	assert.NotNil(t, c.Hub)
	assert.NotNil(t, c.Subscriber)
	assert.True(t, c.Resolver.HasPermission(rbac.RoleAdmin, rbac.AccessSettings))
}

func TestNew_WorkerRelaysToPushChannel(t *testing.T) {
	cfg := testConfig(t)

	c, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(c.Cleanup)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := c.RedisClient.Subscribe(ctx, cfg.Notifications.PushChannel)
	t.Cleanup(func() { sub.Close() })
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	ev := push.Event{RecipientID: "user-7", Notification: testutil.Notification("n-42")}
	payload, err := push.Encode(ev)
	require.NoError(t, err)

	require.NoError(t, c.Worker.HandleNotificationPush(ctx, asynq.NewTask(queue.TypeNotificationPush, payload)))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	got, err := push.Decode([]byte(msg.Payload))
	require.NoError(t, err)
	assert.Equal(t, ev, got)

	// the worker never writes to this instance's hub directly
	assert.Zero(t, c.Hub.Len())
}

func TestNew_PolicyFile(t *testing.T) {
	cfg := testConfig(t)

	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roles:\n  auditor:\n    - access-reports\n"), 0o600))
	cfg.RBAC.PolicyFile = path

	c, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(c.Cleanup)

	assert.True(t, c.Resolver.HasPermission("auditor", rbac.AccessReports))
	assert.False(t, c.Resolver.HasPermission(rbac.RoleAdmin, rbac.AccessReports))
}

func TestNew_BadPolicyFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.RBAC.PolicyFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNewStore(t *testing.T) {
	cfg := config.NotificationsConfig{CacheBackend: "memory"}
	s, err := newStore(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &cache.Memory{}, s)

	cfg.CacheBackend = "redis"
	s, err = newStore(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &cache.Redis{}, s)

	cfg.CacheBackend = "memcached"
	_, err = newStore(cfg, nil)
	assert.ErrorContains(t, err, "memcached")
}
