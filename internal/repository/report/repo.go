package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/reportdex/internal/db"
	"github.com/kailas-cloud/reportdex/internal/domain"
	domreport "github.com/kailas-cloud/reportdex/internal/domain/report"
)

// store is the consumer interface for reports (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements usecase/report.Repository on Redis hashes.
type Repo struct {
	store     store
	vectorDim int
	hnsw      HNSWConfig
}

// New creates a report repository.
func New(s store, vectorDim int) *Repo {
	return &Repo{store: s, vectorDim: vectorDim, hnsw: HNSWConfig{M: 16, EFConstruct: 200}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// EnsureIndex creates the report index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("index exists %s: %w", IndexName, err)
	}
	if exists {
		return nil
	}
	if err := r.store.CreateIndex(ctx, Schema(r.vectorDim, r.hnsw)); err != nil {
		// another replica may have won the race
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", IndexName, err)
	}
	return nil
}

// Save writes a report hash. The index picks it up on write.
func (r *Repo) Save(ctx context.Context, rep *domreport.Report) error {
	if rep.ID() == "" {
		return fmt.Errorf("save report: empty id")
	}
	if v := rep.Vector(); len(v) > 0 && len(v) != r.vectorDim {
		return fmt.Errorf("report %s: got %d, want %d: %w", rep.ID(), len(v), r.vectorDim, domain.ErrVectorDimMismatch)
	}
	key := Key(rep.ID())
	if err := r.store.HSet(ctx, key, BuildHashFields(rep)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Get returns a stored report by ID.
func (r *Repo) Get(ctx context.Context, id string) (domreport.Report, error) {
	key := Key(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domreport.Report{}, domain.ErrNotFound
		}
		return domreport.Report{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return ParseHashFields(id, m), nil
}

// IDFromKey strips the keyspace prefix.
func IDFromKey(key string) string {
	return strings.TrimPrefix(key, KeyPrefix)
}
