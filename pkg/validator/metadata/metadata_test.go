package metadata_test

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katydid-common-validator/pkg/validator/core"
	"katydid-common-validator/pkg/validator/metadata"
)

type lengthRule struct {
	max int
}

func (r *lengthRule) Validate(value any, ctx *core.ValidationContext) *core.ValidationResult {
	return nil
}

type address struct {
	City string
}

type customer struct {
	Name    string
	Home    address
	Billing address
	Note    string
}

func TestExtract_TypeAndFieldRules(t *testing.T) {
	typeRule := &lengthRule{max: 1}
	nameRule := &lengthRule{max: 10}

	meta := metadata.Extract(&core.TypeDescriptor{
		Type:  reflect.TypeOf(customer{}),
		Rules: []core.Rule{typeRule, nil},
		Fields: []core.FieldDescriptor{
			{Name: "Name", Rules: []core.Rule{nameRule}},
			{Name: "Note"},
		},
	})

	assert.Equal(t, reflect.TypeOf(customer{}), meta.Type())
	require.Len(t, meta.TypeRules(), 1)
	assert.Same(t, typeRule, meta.TypeRules()[0])

	require.Len(t, meta.Fields(), 1, "无规则的字段不保存")
	assert.Equal(t, "Name", meta.Fields()[0].Name())
	assert.Nil(t, meta.FieldRules("Note"))
}

func TestExtract_DedupByIdentity(t *testing.T) {
	inherited := &lengthRule{max: 50}
	lookalike := &lengthRule{max: 50}
	direct := &lengthRule{max: 20}

	meta := metadata.Extract(&core.TypeDescriptor{
		Type: reflect.TypeOf(customer{}),
		Fields: []core.FieldDescriptor{
			{
				Name:      "Home",
				Rules:     []core.Rule{direct, inherited},
				TypeRules: []core.Rule{inherited},
			},
			{
				Name:      "Billing",
				Rules:     []core.Rule{lookalike, inherited, direct},
				TypeRules: []core.Rule{inherited},
			},
		},
	})

	home := meta.FieldRules("Home")
	require.Len(t, home, 1)
	assert.Same(t, direct, home[0])

	billing := meta.FieldRules("Billing")
	require.Len(t, billing, 2, "结构相同但不是同一实例的规则必须保留")
	assert.Same(t, lookalike, billing[0])
	assert.Same(t, direct, billing[1])
}

func TestExtract_KeepsLegitimateDuplicates(t *testing.T) {
	a := &lengthRule{max: 3}
	b := &lengthRule{max: 3}

	meta := metadata.Extract(&core.TypeDescriptor{
		Type:   reflect.TypeOf(customer{}),
		Fields: []core.FieldDescriptor{{Name: "Name", Rules: []core.Rule{a, b}}},
	})
	assert.Len(t, meta.FieldRules("Name"), 2)
}

// markerRule 零大小的规则类型
type markerRule struct{}

func (*markerRule) Validate(value any, ctx *core.ValidationContext) *core.ValidationResult {
	return nil
}

func TestExtract_KeepsDistinctZeroSizeRules(t *testing.T) {
	fieldRule := &markerRule{}
	typeRule := &markerRule{}

	meta := metadata.Extract(&core.TypeDescriptor{
		Type: reflect.TypeOf(customer{}),
		Fields: []core.FieldDescriptor{{
			Name:      "Home",
			Rules:     []core.Rule{fieldRule},
			TypeRules: []core.Rule{typeRule},
		}},
	})

	rules := meta.FieldRules("Home")
	require.Len(t, rules, 1, "不同实例即使地址相同也必须保留")
	assert.Same(t, fieldRule, rules[0])
}

func TestExtract_Nil(t *testing.T) {
	meta := metadata.Extract(nil)
	assert.True(t, meta.IsEmpty())
}

type stubInspector struct {
	err error
}

func (s stubInspector) Describe(typ reflect.Type) (*core.TypeDescriptor, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &core.TypeDescriptor{Type: typ}, nil
}

func TestExtractType_WrapsError(t *testing.T) {
	boom := errors.New("boom")
	_, err := metadata.ExtractType(stubInspector{err: boom}, reflect.TypeOf(customer{}))

	var ierr *core.IntrospectionError
	require.ErrorAs(t, err, &ierr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, reflect.TypeOf(customer{}), ierr.Type)

	meta, err := metadata.ExtractType(stubInspector{}, reflect.TypeOf(customer{}))
	require.NoError(t, err)
	assert.True(t, meta.IsEmpty())
}

func countingCompute(calls *atomic.Int64) metadata.ComputeFunc {
	return func(typ reflect.Type) (*core.ObjectMetadata, error) {
		calls.Add(1)
		return core.NewObjectMetadata(typ, nil, nil), nil
	}
}

func TestKeyedCache_ComputeOnce(t *testing.T) {
	var calls atomic.Int64
	cache := metadata.NewKeyedCache()
	typ := reflect.TypeOf(customer{})

	first, err := cache.GetOrCompute(typ, countingCompute(&calls))
	require.NoError(t, err)

	second, err := cache.GetOrCompute(typ, countingCompute(&calls))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), calls.Load())

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)

	got, ok := cache.Get(typ)
	assert.True(t, ok)
	assert.Same(t, first, got)

	_, ok = cache.Get(reflect.TypeOf(address{}))
	assert.False(t, ok)
}

func TestKeyedCache_ConcurrentSingleCanonicalValue(t *testing.T) {
	var calls atomic.Int64
	cache := metadata.NewKeyedCache()
	typ := reflect.TypeOf(customer{})

	const workers = 32
	results := make([]*core.ObjectMetadata, workers)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			meta, err := cache.GetOrCompute(typ, countingCompute(&calls))
			if err == nil {
				results[i] = meta
			}
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, results[0], results[i], "所有调用方必须得到同一个缓存值")
	}
	assert.GreaterOrEqual(t, calls.Load(), int64(1))
	assert.Equal(t, 1, cache.Len())

	// 预热后不再计算
	before := calls.Load()
	_, _ = cache.GetOrCompute(typ, countingCompute(&calls))
	assert.Equal(t, before, calls.Load())
}

func TestKeyedCache_MemoizesError(t *testing.T) {
	var calls atomic.Int64
	boom := errors.New("introspection failed")
	cache := metadata.NewKeyedCache()
	compute := func(typ reflect.Type) (*core.ObjectMetadata, error) {
		calls.Add(1)
		return nil, boom
	}

	for i := 0; i < 3; i++ {
		_, err := cache.GetOrCompute(reflect.TypeOf(1), compute)
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, int64(1), calls.Load())

	_, ok := cache.Get(reflect.TypeOf(1))
	assert.False(t, ok)
}

func TestLazyCache(t *testing.T) {
	var calls atomic.Int64
	typ := reflect.TypeOf(customer{})
	cache := metadata.NewLazyCache(typ, countingCompute(&calls))
	assert.Equal(t, typ, cache.Type())
	assert.Equal(t, 0, cache.Stats().Size)

	var wg sync.WaitGroup
	results := make([]*core.ObjectMetadata, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			meta, _ := cache.Get()
			results[i] = meta
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		assert.Same(t, results[0], results[i])
	}

	before := calls.Load()
	meta, err := cache.Get()
	require.NoError(t, err)
	assert.Same(t, results[0], meta)
	assert.Equal(t, before, calls.Load())
	assert.Equal(t, 1, cache.Stats().Size)
}
