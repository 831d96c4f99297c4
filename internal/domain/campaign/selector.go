package campaign

import (
	"context"
	"sort"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smartcycle/discounts/internal/domain/condition"
)

// ScopeCache caches scope-selection results keyed by a hash of the inputs.
// Implementations own TTL and eviction; entries must be invalidated on any
// product or campaign mutation. Caching is an optimization only; Select
// produces identical output with or without it.
type ScopeCache interface {
	Get(key uint64) ([]string, bool)
	Set(key uint64, ids []string)
	Invalidate()
}

// Selector narrows candidate product sets through the condition engine. For
// large candidate sets the evaluation is sharded across workers; per-product
// evaluation is independent, so sharding cannot change the result.
type Selector struct {
	cache     ScopeCache
	shardSize int
	lg        *zap.Logger
}

// defaultShardSize bounds how many products one worker evaluates.
const defaultShardSize = 2048

// NewSelector creates a Selector. cache may be nil to disable caching.
func NewSelector(cache ScopeCache, lg *zap.Logger) *Selector {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Selector{cache: cache, shardSize: defaultShardSize, lg: lg}
}

// Select returns the subset of productIDs in scope for the condition set.
// The resolver must cover every candidate id; products it cannot resolve
// fall under the engine's missing-property rules.
func (s *Selector) Select(
	ctx context.Context,
	resolver condition.Resolver,
	productIDs []string,
	conditions []condition.Condition,
	logic condition.Logic,
) ([]string, error) {
	if len(productIDs) == 0 || len(conditions) == 0 {
		return productIDs, nil
	}

	key := scopeKey(productIDs, conditions, logic)
	if s.cache != nil {
		if ids, ok := s.cache.Get(key); ok {
			return ids, nil
		}
	}

	engine := condition.NewEngine(resolver, s.lg)

	var matched []string
	if len(productIDs) <= s.shardSize {
		matched = engine.Apply(productIDs, conditions, logic)
	} else {
		var err error
		matched, err = s.selectSharded(ctx, engine, productIDs, conditions, logic)
		if err != nil {
			return nil, err
		}
	}

	if s.cache != nil {
		s.cache.Set(key, matched)
	}
	return matched, nil
}

// selectSharded fans the candidate set out across workers and merges the
// per-shard matches.
func (s *Selector) selectSharded(
	ctx context.Context,
	engine *condition.Engine,
	productIDs []string,
	conditions []condition.Condition,
	logic condition.Logic,
) ([]string, error) {
	numShards := (len(productIDs) + s.shardSize - 1) / s.shardSize
	results := make([][]string, numShards)

	g, ctx := errgroup.WithContext(ctx)
	for i := range numShards {
		lo := i * s.shardSize
		hi := min(lo+s.shardSize, len(productIDs))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = engine.Apply(productIDs[lo:hi], conditions, logic)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []string
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged, nil
}

// scopeKey hashes the candidate set, condition set, and logic into a cache
// key. Candidate ids are hashed order-independently (sorted copy) so callers
// get hits regardless of input ordering.
func scopeKey(productIDs []string, conditions []condition.Condition, logic condition.Logic) uint64 {
	sorted := make([]string, len(productIDs))
	copy(sorted, productIDs)
	sort.Strings(sorted)

	h := xxhash.New()
	_, _ = h.WriteString(string(logic))
	for _, c := range conditions {
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(string(c.Property))
		_, _ = h.WriteString("\x01")
		_, _ = h.WriteString(string(c.Operator))
		_, _ = h.WriteString("\x01")
		_, _ = h.WriteString(c.Value)
		_, _ = h.WriteString("\x01")
		_, _ = h.WriteString(c.Value2)
		_, _ = h.WriteString("\x01")
		_, _ = h.WriteString(string(c.Mode))
	}
	for _, id := range sorted {
		_, _ = h.WriteString("\x02")
		_, _ = h.WriteString(id)
	}
	return h.Sum64()
}
