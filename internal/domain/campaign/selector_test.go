package campaign

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartcycle/discounts/internal/domain/condition"
	"github.com/smartcycle/discounts/internal/domain/product"
)

// countingResolver tracks how many property lookups reach the underlying
// resolver, so cache hits are observable.
type countingResolver struct {
	inner condition.Resolver
	calls int
}

func (r *countingResolver) Resolve(id string, prop condition.Property) (condition.Value, bool) {
	r.calls++
	return r.inner.Resolve(id, prop)
}

type stubScopeCache struct {
	entries     map[uint64][]string
	invalidated int
}

func newStubScopeCache() *stubScopeCache {
	return &stubScopeCache{entries: map[uint64][]string{}}
}

func (c *stubScopeCache) Get(key uint64) ([]string, bool) {
	ids, ok := c.entries[key]
	return ids, ok
}

func (c *stubScopeCache) Set(key uint64, ids []string) { c.entries[key] = ids }

func (c *stubScopeCache) Invalidate() {
	c.invalidated++
	c.entries = map[uint64][]string{}
}

func pricedCatalog(n int) []product.Product {
	products := make([]product.Product, n)
	for i := range products {
		products[i] = product.Product{
			ID:    fmt.Sprintf("p%04d", i),
			Price: decimal.NewFromInt(int64(i)),
		}
	}
	return products
}

func TestSelectorSelect_EmptyInputsShortCircuit(t *testing.T) {
	s := NewSelector(nil, zap.NewNop())
	resolver := product.ResolverFor(pricedCatalog(3))
	conds := []condition.Condition{
		{Property: condition.PropPrice, Operator: condition.OpGt, Value: "1", Mode: condition.ModeInclude},
	}

	got, err := s.Select(context.Background(), resolver, nil, conds, condition.LogicAll)
	require.NoError(t, err)
	assert.Empty(t, got)

	ids := []string{"p0000", "p0001"}
	got, err = s.Select(context.Background(), resolver, ids, nil, condition.LogicAll)
	require.NoError(t, err)
	assert.Equal(t, ids, got)
}

func TestSelectorSelect_Filters(t *testing.T) {
	s := NewSelector(nil, zap.NewNop())
	resolver := product.ResolverFor(pricedCatalog(10))

	ids := make([]string, 10)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%04d", i)
	}
	conds := []condition.Condition{
		{Property: condition.PropPrice, Operator: condition.OpGte, Value: "7", Mode: condition.ModeInclude},
	}

	got, err := s.Select(context.Background(), resolver, ids, conds, condition.LogicAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"p0007", "p0008", "p0009"}, got)
}

func TestSelectorSelect_CacheHitSkipsEvaluation(t *testing.T) {
	cache := newStubScopeCache()
	s := NewSelector(cache, zap.NewNop())
	resolver := &countingResolver{inner: product.ResolverFor(pricedCatalog(10))}

	ids := []string{"p0001", "p0005", "p0009"}
	conds := []condition.Condition{
		{Property: condition.PropPrice, Operator: condition.OpGt, Value: "4", Mode: condition.ModeInclude},
	}

	first, err := s.Select(context.Background(), resolver, ids, conds, condition.LogicAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"p0005", "p0009"}, first)
	callsAfterMiss := resolver.calls
	require.Positive(t, callsAfterMiss)

	second, err := s.Select(context.Background(), resolver, ids, conds, condition.LogicAll)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterMiss, resolver.calls)
}

func TestSelectorSelect_CacheKeyIgnoresCandidateOrder(t *testing.T) {
	cache := newStubScopeCache()
	s := NewSelector(cache, zap.NewNop())
	resolver := &countingResolver{inner: product.ResolverFor(pricedCatalog(10))}

	conds := []condition.Condition{
		{Property: condition.PropPrice, Operator: condition.OpLt, Value: "3", Mode: condition.ModeInclude},
	}

	_, err := s.Select(context.Background(), resolver, []string{"p0000", "p0001", "p0002"}, conds, condition.LogicAll)
	require.NoError(t, err)
	callsAfterMiss := resolver.calls

	// Same candidate set in a different order must hit the cached entry.
	_, err = s.Select(context.Background(), resolver, []string{"p0002", "p0000", "p0001"}, conds, condition.LogicAll)
	require.NoError(t, err)
	assert.Equal(t, callsAfterMiss, resolver.calls)

	// A different condition set must not.
	other := []condition.Condition{
		{Property: condition.PropPrice, Operator: condition.OpLt, Value: "2", Mode: condition.ModeInclude},
	}
	_, err = s.Select(context.Background(), resolver, []string{"p0000", "p0001", "p0002"}, other, condition.LogicAll)
	require.NoError(t, err)
	assert.Greater(t, resolver.calls, callsAfterMiss)
}

func TestSelectorSelect_ShardedMatchesDirect(t *testing.T) {
	catalog := pricedCatalog(500)
	resolver := product.ResolverFor(catalog)

	ids := make([]string, len(catalog))
	for i := range catalog {
		ids[i] = catalog[i].ID
	}
	conds := []condition.Condition{
		{Property: condition.PropPrice, Operator: condition.OpBetween, Value: "100", Value2: "399", Mode: condition.ModeInclude},
	}

	direct := NewSelector(nil, zap.NewNop())
	want, err := direct.Select(context.Background(), resolver, ids, conds, condition.LogicAll)
	require.NoError(t, err)
	require.Len(t, want, 300)

	sharded := &Selector{shardSize: 64, lg: zap.NewNop()}
	got, err := sharded.Select(context.Background(), resolver, ids, conds, condition.LogicAll)
	require.NoError(t, err)

	sort.Strings(want)
	sort.Strings(got)
	assert.Equal(t, want, got)
}

func TestSelectorSelect_ShardedHonorsCancellation(t *testing.T) {
	catalog := pricedCatalog(200)
	resolver := product.ResolverFor(catalog)

	ids := make([]string, len(catalog))
	for i := range catalog {
		ids[i] = catalog[i].ID
	}
	conds := []condition.Condition{
		{Property: condition.PropPrice, Operator: condition.OpGt, Value: "0", Mode: condition.ModeInclude},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Selector{shardSize: 10, lg: zap.NewNop()}
	_, err := s.Select(ctx, resolver, ids, conds, condition.LogicAll)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScopeKey(t *testing.T) {
	conds := []condition.Condition{
		{Property: condition.PropPrice, Operator: condition.OpGt, Value: "10", Mode: condition.ModeInclude},
	}

	base := scopeKey([]string{"a", "b"}, conds, condition.LogicAll)
	assert.Equal(t, base, scopeKey([]string{"b", "a"}, conds, condition.LogicAll))
	assert.NotEqual(t, base, scopeKey([]string{"a", "b"}, conds, condition.LogicAny))
	assert.NotEqual(t, base, scopeKey([]string{"a", "b", "c"}, conds, condition.LogicAll))

	flipped := []condition.Condition{
		{Property: condition.PropPrice, Operator: condition.OpGt, Value: "10", Mode: condition.ModeExclude},
	}
	assert.NotEqual(t, base, scopeKey([]string{"a", "b"}, flipped, condition.LogicAll))
}
