package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	backendRedis     = "redis"
	redisPingTimeout = 5 * time.Second
	// redisUpdateRetries bounds how often an update is retried after the
	// hash changed under WATCH.
	redisUpdateRetries = 10
)

// RedisStore keeps reports in a hash (id -> JSON document) and announces every
// change on a pub/sub channel. Subscribers reload the whole hash on each
// announcement, so writes from other processes are seen too.
type RedisStore struct {
	client *redis.Client
	node   *snowflake.Node
	hub    *hub
	cfg    settings

	mu      sync.Mutex
	pubsubs map[uint64]*redis.PubSub
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(redisURL string, opts ...Option) (*RedisStore, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, opts...)
}

// NewRedisStoreWithClient creates a store from an existing client.
func NewRedisStoreWithClient(client *redis.Client, opts ...Option) (*RedisStore, error) {
	cfg := newSettings(opts)
	node, err := cfg.snowflakeNode()
	if err != nil {
		return nil, fmt.Errorf("snowflake node: %w", err)
	}
	return &RedisStore{
		client:  client,
		node:    node,
		hub:     newHub(cfg.logger.Named("redis-repository")),
		cfg:     cfg,
		pubsubs: make(map[uint64]*redis.PubSub),
	}, nil
}

func (s *RedisStore) hashKey() string { return s.cfg.prefix + "reports" }

func (s *RedisStore) channel() string { return s.cfg.prefix + "reports:changed" }

// Create stores a new report and announces it.
func (s *RedisStore) Create(ctx context.Context, e model.Evaluation) (string, error) {
	defer observe(backendRedis, "create", time.Now())

	id := s.node.Generate().String()
	doc, err := model.EncodeDocument(e, s.cfg.now().Unix())
	if err != nil {
		return "", err
	}
	if err := s.client.HSet(ctx, s.hashKey(), id, doc).Err(); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	s.announce(ctx, id)
	return id, nil
}

// Update rewrites an existing report, keeping its creation timestamp. The
// read and the write run under WATCH so a concurrent delete is never undone.
func (s *RedisStore) Update(ctx context.Context, id string, e model.Evaluation) error {
	defer observe(backendRedis, "update", time.Now())

	key := s.hashKey()
	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, key, id).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("update %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("load report %s: %w", id, err)
		}

		var createdAt int64
		if current, err := model.DecodeDocument(id, raw); err == nil {
			createdAt = current.CreatedAt
		}
		doc, err := model.EncodeDocument(e, createdAt)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, id, doc)
			return nil
		})
		return err
	}

	for i := 0; i < redisUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return err
		}
		s.announce(ctx, id)
		return nil
	}
	return fmt.Errorf("update %s: %w", id, ErrWriteConflict)
}

// Delete removes a report if present.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	defer observe(backendRedis, "delete", time.Now())

	if err := s.client.HDel(ctx, s.hashKey(), id).Err(); err != nil {
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	s.announce(ctx, id)
	return nil
}

// announce publishes the change. The write already succeeded, so a failed
// announcement is only logged.
func (s *RedisStore) announce(ctx context.Context, id string) {
	if err := s.client.Publish(ctx, s.channel(), id).Err(); err != nil {
		s.cfg.logger.Warn(ctx, "change announcement failed", logger.String("id", id), logger.Error(err))
	}
}

// Subscribe listens on the change channel and reloads the hash on each message.
func (s *RedisStore) Subscribe(ctx context.Context, onSnapshot SnapshotFunc, onError ErrorFunc) func() {
	subCtx, cancel := context.WithCancel(ctx)

	pubsub := s.client.Subscribe(subCtx, s.channel())
	first := event{}
	// Wait for the subscription to be confirmed before the first load so no
	// change between the load and the subscription is lost.
	if _, err := pubsub.Receive(subCtx); err != nil {
		first.err = fmt.Errorf("subscribe %s: %w", s.channel(), err)
	} else if reports, err := s.load(subCtx); err != nil {
		first.err = err
	} else {
		first.reports = reports
	}

	id, _ := s.hub.add(subCtx, first, onSnapshot, onError)
	s.mu.Lock()
	s.pubsubs[id] = pubsub
	s.mu.Unlock()

	go s.listen(subCtx, id, pubsub)

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			s.hub.remove(id)
			s.closePubSub(id)
		})
	}
}

func (s *RedisStore) listen(ctx context.Context, id uint64, pubsub *redis.PubSub) {
	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-messages:
			if !ok {
				return
			}
			reports, err := s.load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.hub.deliver(id, event{err: err})
				continue
			}
			s.hub.deliver(id, event{reports: reports})
		}
	}
}

func (s *RedisStore) load(ctx context.Context) ([]model.Report, error) {
	defer observe(backendRedis, "load", time.Now())

	entries, err := s.client.HGetAll(ctx, s.hashKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}
	out := make([]model.Report, 0, len(entries))
	for id, doc := range entries {
		r, err := model.DecodeDocument(id, []byte(doc))
		if err != nil {
			s.cfg.logger.Warn(ctx, "skipping unreadable report", logger.String("id", id), logger.Error(err))
			continue
		}
		out = append(out, r)
	}
	sortReports(out)
	return out, nil
}

func (s *RedisStore) closePubSub(id uint64) {
	s.mu.Lock()
	pubsub, ok := s.pubsubs[id]
	delete(s.pubsubs, id)
	s.mu.Unlock()
	if ok {
		_ = pubsub.Close()
	}
}

// Close ends all subscriptions and closes the client.
func (s *RedisStore) Close() error {
	s.hub.close()
	s.mu.Lock()
	ids := make([]uint64, 0, len(s.pubsubs))
	for id := range s.pubsubs {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	for _, id := range ids {
		s.closePubSub(id)
	}
	return s.client.Close()
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
