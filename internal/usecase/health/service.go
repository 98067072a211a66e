package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means search works but semantic search does not.
	Degraded Status = "degraded"
	// Unhealthy means the search backend is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names in Report.Checks.
const (
	ComponentDatabase  = "database"
	ComponentEmbedding = "embedding"
)

// DefaultCheckTimeout bounds a single component probe.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status  Status
	Checks  map[string]CheckResult
	Latency map[string]time.Duration
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding EmbeddingChecker
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a Service. embedding can be nil.
func New(db DBPinger, embedding EmbeddingChecker, logger *zap.Logger) *Service {
	return &Service{db: db, embedding: embedding, timeout: DefaultCheckTimeout, logger: logger}
}

type probe struct {
	name     string
	critical bool
	fn       func(ctx context.Context) error
}

// Check probes all components in parallel. A failing database makes the service
// unhealthy; a failing embedding provider only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	probes := []probe{{name: ComponentDatabase, critical: true, fn: s.db.Ping}}
	if s.embedding != nil {
		probes = append(probes, probe{name: ComponentEmbedding, fn: s.embedding.HealthCheck})
	}

	rep := Report{
		Status:  Healthy,
		Checks:  make(map[string]CheckResult, len(probes)),
		Latency: make(map[string]time.Duration, len(probes)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, p := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			start := time.Now()
			err := p.fn(pctx)
			elapsed := time.Since(start)

			mu.Lock()
			defer mu.Unlock()
			rep.Latency[p.name] = elapsed
			if err == nil {
				rep.Checks[p.name] = CheckOK
				return
			}
			rep.Checks[p.name] = CheckError
			s.logger.Warn("Health check failed", zap.String("component", p.name), zap.Error(err))
			switch {
			case p.critical:
				rep.Status = Unhealthy
			case rep.Status == Healthy:
				rep.Status = Degraded
			}
		}()
	}
	wg.Wait()

	return rep
}
