package topix

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/topix/internal/db"
	dbRedis "github.com/kailas-cloud/topix/internal/db/redis"
	"github.com/kailas-cloud/topix/internal/domain"
	clusterrepo "github.com/kailas-cloud/topix/internal/repository/cluster"
	assignuc "github.com/kailas-cloud/topix/internal/usecase/assign"
	recluseruc "github.com/kailas-cloud/topix/internal/usecase/recluster"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the topix SDK entry point.
type Client struct {
	store     db.Store
	assignSvc *assignuc.Service
	batchSvc  *recluseruc.Service
}

// New creates a topix Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("topix: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("topix: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("topix: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	keyPrefix := cfg.keyPrefix
	if keyPrefix == "" {
		keyPrefix = "topix:"
	}

	repo := clusterrepo.New(store, keyPrefix, cfg.vectorDimensions)
	if cfg.hnswM > 0 || cfg.hnswEFConstruct > 0 {
		repo = repo.WithHNSW(clusterrepo.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		})
	}

	// Embedder: noop если не задан (pre-embedded documents работают, текст вернёт ошибку)
	var domEmb domain.Embedder = &noopEmbedder{}
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
	}

	assignSvc := assignuc.New(repo, domEmb, nil, logger)
	if cfg.joinDistance > 0 {
		assignSvc = assignSvc.WithJoinDistance(domain.Distance(cfg.joinDistance))
	}

	batchSvc := recluseruc.New(nil, logger)
	if cfg.batchJoin > 0 && cfg.batchMerge > 0 {
		batchSvc = batchSvc.WithThresholds(
			domain.Similarity(cfg.batchJoin),
			domain.Similarity(cfg.batchMerge),
		)
	}
	if cfg.maxBatchSize > 0 {
		batchSvc = batchSvc.WithMaxBatch(cfg.maxBatchSize)
	}

	return &Client{
		store:     store,
		assignSvc: assignSvc,
		batchSvc:  batchSvc,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Namespace returns a handle scoped to one cluster namespace.
func (c *Client) Namespace(name string) *NamespaceService {
	return &NamespaceService{
		name:      name,
		assignSvc: c.assignSvc,
		batchSvc:  c.batchSvc,
	}
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"topix: embedder not configured (use WithEmbedder to assign raw text)",
	)
}
