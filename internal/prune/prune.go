// Package prune evicts idle or aged sandbox containers, rate-limited to
// one pass per five-minute window process-wide. Bulk teardown fans
// container removals out with golang.org/x/sync/errgroup, bounding
// concurrency the way the teacher bounds its own concurrent fan-outs
// (e.g. parallel health checks in internal/run).
package prune

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/dockerdriver"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/log"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/registry"
	"github.com/wopr-network/wopr-plugin-sandbox/internal/sandboxcfg"
)

// debounce bounds maybePrune to one pass per window, process-wide (§4.I).
const debounce = 5 * time.Minute

// maxConcurrentRemovals bounds pruneAll's fan-out of concurrent
// "docker rm -f" calls during shutdown teardown.
const maxConcurrentRemovals = 8

var (
	mu           sync.Mutex
	lastPruneAt  time.Time
)

// Pruner evaluates and evicts registry entries against idle/age
// thresholds, backed by a Registry and the Docker driver.
type Pruner struct {
	reg *registry.Registry
}

// New returns a Pruner backed by reg.
func New(reg *registry.Registry) *Pruner {
	return &Pruner{reg: reg}
}

// MaybePrune runs a prune pass at most once per five-minute window. A
// pass that errors is logged and swallowed; the debounce timestamp still
// advances.
func (p *Pruner) MaybePrune(ctx context.Context, now time.Time, cfg sandboxcfg.PruneConfig) {
	mu.Lock()
	if now.Sub(lastPruneAt) < debounce {
		mu.Unlock()
		return
	}
	lastPruneAt = now
	mu.Unlock()

	if err := p.Prune(ctx, now, cfg); err != nil {
		log.Warn("sandbox prune pass failed", "error", err)
	}
}

// Prune evicts any registry entry past the idle or max-age threshold.
// Both thresholds at zero disables pruning entirely. Eviction removes the
// container best-effort, then always removes the registry entry, even if
// the container removal failed (self-healing).
func (p *Pruner) Prune(ctx context.Context, now time.Time, cfg sandboxcfg.PruneConfig) error {
	if cfg.IdleHours == 0 && cfg.MaxAgeDays == 0 {
		return nil
	}

	records, err := p.reg.ListAll()
	if err != nil {
		return err
	}

	nowMs := now.UnixMilli()
	for _, r := range records {
		idleMs := nowMs - r.LastUsedAtMs
		ageMs := nowMs - r.CreatedAtMs
		idleExpired := cfg.IdleHours > 0 && idleMs > cfg.IdleHours*3600*1000
		ageExpired := cfg.MaxAgeDays > 0 && ageMs > cfg.MaxAgeDays*86400*1000
		if !idleExpired && !ageExpired {
			continue
		}
		p.evict(ctx, r.ContainerName, r.SessionKey)
	}
	return nil
}

// PruneAll tears down every known record regardless of threshold, used on
// plugin shutdown. Returns the count removed.
func (p *Pruner) PruneAll(ctx context.Context) (int, error) {
	records, err := p.reg.ListAll()
	if err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRemovals)
	for _, r := range records {
		name, sessionKey := r.ContainerName, r.SessionKey
		g.Go(func() error {
			p.evict(gctx, name, sessionKey)
			return nil
		})
	}
	_ = g.Wait() // evict swallows its own errors; Wait only joins goroutines
	return len(records), nil
}

// evict removes name's container best-effort, then removes its registry
// entry regardless of whether the Docker removal succeeded. Both steps log
// through a session-scoped logger so the two lines correlate without
// repeating the container name in every call.
func (p *Pruner) evict(ctx context.Context, name, sessionKey string) {
	sessionLog := log.WithSession(sessionKey)
	if _, err := dockerdriver.ExecDocker(ctx, []string{"rm", "-f", name}, dockerdriver.ExecOptions{AllowFailure: true}); err != nil {
		sessionLog.Warn("sandbox prune: removing container failed", "container", name, "error", err)
	}
	if err := p.reg.Remove(name); err != nil {
		sessionLog.Warn("sandbox prune: removing registry entry failed", "container", name, "error", err)
	}
}

// EnsureContainerRunning starts name if it exists but is stopped.
func (p *Pruner) EnsureContainerRunning(ctx context.Context, name string) error {
	return dockerdriver.EnsureContainerRunning(ctx, name)
}
