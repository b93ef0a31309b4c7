package container

import (
	"fmt"

	"github.com/USSTM/courier-console/internal/api"
	"github.com/USSTM/courier-console/internal/apiclient"
	"github.com/USSTM/courier-console/internal/auth"
	"github.com/USSTM/courier-console/internal/cache"
	"github.com/USSTM/courier-console/internal/config"
	"github.com/USSTM/courier-console/internal/logging"
	"github.com/USSTM/courier-console/internal/notifications"
	"github.com/USSTM/courier-console/internal/push"
	"github.com/USSTM/courier-console/internal/queue"
	"github.com/USSTM/courier-console/internal/rbac"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	Config        *config.Config
	RedisClient   *redis.Client
	Resolver      *rbac.Resolver
	Authenticator *auth.Authenticator
	Backend       *apiclient.Client
	Hub           *notifications.Hub
	Subscriber    *push.Subscriber
	Worker        *queue.Worker
	Server        *api.Server
}

func New(cfg config.Config) (*Container, error) {
	policy := rbac.DefaultPolicy()
	if cfg.RBAC.PolicyFile != "" {
		p, err := rbac.LoadPolicy(cfg.RBAC.PolicyFile)
		if err != nil {
			return nil, err
		}
		policy = p
		logging.Info("Loaded role policy", "file", cfg.RBAC.PolicyFile, "roles", len(p))
	}
	resolver := rbac.NewResolver(policy)

	// Two separate Redis connection pools are used: the asynq worker
	// manages its own connection, and this client serves the session
	// revocation list, the notification cache and pub/sub.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	jwtService, err := auth.NewJWTService([]byte(cfg.JWT.SigningKey), cfg.JWT.Issuer, cfg.JWT.Expiry)
	if err != nil {
		return nil, err
	}
	authenticator := auth.NewAuthenticator(jwtService, auth.NewRedisStore(redisClient))

	store, err := newStore(cfg.Notifications, redisClient)
	if err != nil {
		return nil, err
	}

	backend := apiclient.NewClient(cfg.Backend)
	hub := notifications.NewHub(backend, store,
		notifications.WithLiveLimit(cfg.Notifications.LiveLimit),
		notifications.WithIdleTTL(cfg.Notifications.IdleTTL))

	// queued pushes are relayed to pub/sub so the instance holding the
	// recipient's session receives them, whichever instance ran the task
	subscriber := push.NewSubscriber(redisClient, cfg.Notifications.PushChannel, hub)
	worker := queue.NewWorker(&cfg.Redis, cfg.Notifications.PushQueue,
		push.NewRelay(redisClient, cfg.Notifications.PushChannel))

	server := api.NewServer(resolver, hub, authenticator, redisClient, cfg.Notifications.DefaultPageSize)

	logging.Info("Container initialized",
		"backend", cfg.Backend.BaseURL,
		"redis", cfg.Redis.Addr,
		"notification_cache", cfg.Notifications.CacheBackend)

	return &Container{
		Config:        &cfg,
		RedisClient:   redisClient,
		Resolver:      resolver,
		Authenticator: authenticator,
		Backend:       backend,
		Hub:           hub,
		Subscriber:    subscriber,
		Worker:        worker,
		Server:        server,
	}, nil
}

func newStore(cfg config.NotificationsConfig, client *redis.Client) (cache.Store, error) {
	switch cfg.CacheBackend {
	case "", "memory":
		return cache.NewMemory(cfg.CacheTTL), nil
	case "redis":
		return cache.NewRedis(client, "console:", cfg.CacheTTL), nil
	default:
		return nil, fmt.Errorf("unknown notification cache backend %q", cfg.CacheBackend)
	}
}

func (c *Container) Cleanup() {
	if c.Worker != nil {
		c.Worker.Close()
		logging.Info("Worker closed")
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
		logging.Info("Redis client closed")
	}
}
