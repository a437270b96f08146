package topix

import "go.uber.org/zap"

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs    []string
	password string

	keyPrefix        string
	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int

	joinDistance float64
	batchJoin    float64
	batchMerge   float64
	maxBatchSize int

	embedder Embedder
	logger   *zap.Logger
}

// WithRedis connects to Redis at the given addresses.
func WithRedis(addrs []string, password string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
		c.password = password
	}
}

// WithEmbedder sets the text vectorizer. Without one, only pre-embedded
// documents can be assigned; raw text returns an error.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithKeyPrefix overrides the Redis key prefix (default "topix:").
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.keyPrefix = prefix
	}
}

// WithVectorDimensions sets the expected embedding width. 0 accepts the
// first seen width per namespace.
func WithVectorDimensions(dim int) Option {
	return func(c *clientConfig) {
		c.vectorDimensions = dim
	}
}

// WithHNSW tunes the centroid index construction parameters.
func WithHNSW(m, efConstruct int) Option {
	return func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	}
}

// WithJoinDistance overrides the incremental assignment threshold (cosine
// distance; an embedding joins the nearest cluster strictly below it).
func WithJoinDistance(d float64) Option {
	return func(c *clientConfig) {
		c.joinDistance = d
	}
}

// WithBatchThresholds overrides the batch pipeline similarity thresholds
// (token-overlap scores, not distances).
func WithBatchThresholds(join, merge float64) Option {
	return func(c *clientConfig) {
		c.batchJoin = join
		c.batchMerge = merge
	}
}

// WithMaxBatchSize caps the recluster window.
func WithMaxBatchSize(n int) Option {
	return func(c *clientConfig) {
		c.maxBatchSize = n
	}
}

// WithLogger sets the client logger (default: no-op).
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
