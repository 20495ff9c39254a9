package repository

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/okian/scout/pkg/logger"
)

const (
	defaultRedisPrefix = "scout:"
	defaultNodeID      = 1
)

// settings is shared by every backend; each one reads what it needs.
type settings struct {
	logger logger.Logger
	now    func() time.Time
	newID  func() string
	node   *snowflake.Node
	prefix string
}

func newSettings(opts []Option) settings {
	s := settings{
		logger: logger.Nop(),
		now:    time.Now,
		newID:  uuid.NewString,
		prefix: defaultRedisPrefix,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// snowflakeNode returns the configured node or a default one.
func (s *settings) snowflakeNode() (*snowflake.Node, error) {
	if s.node != nil {
		return s.node, nil
	}
	return snowflake.NewNode(defaultNodeID)
}

// Option applies a configuration option to a backend.
type Option func(*settings)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNow overrides the clock used for creation timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides id generation for the memory backend.
func WithIDGenerator(gen func() string) Option {
	return func(s *settings) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithSnowflakeNode sets the id node used by the sqlite and redis backends.
func WithSnowflakeNode(node *snowflake.Node) Option {
	return func(s *settings) {
		if node != nil {
			s.node = node
		}
	}
}

// WithPrefix sets the redis key prefix.
func WithPrefix(prefix string) Option {
	return func(s *settings) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}
