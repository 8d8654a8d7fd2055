package metadata

import (
	"reflect"
	"sync"
	"sync/atomic"

	"katydid-common-validator/pkg/validator/core"
)

// ComputeFunc 元数据计算函数
type ComputeFunc func(typ reflect.Type) (*core.ObjectMetadata, error)

// Stats 缓存统计
type Stats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Computes int64 `json:"computes"`
	Size     int   `json:"size"`
}

// entry 缓存项，内省错误与元数据一起缓存
type entry struct {
	meta *core.ObjectMetadata
	err  error
}

// ============================================================================
// 按类型索引的缓存 - 无淘汰策略
// ============================================================================

// KeyedCache 按类型缓存元数据
//
// 并发安全。多个 goroutine 同时请求未缓存的类型时可能重复计算，
// 但只有第一个写入的结果会被保留，之后的查询都返回该结果。已写入的项不会被替换或淘汰。
type KeyedCache struct {
	data     sync.Map // key: reflect.Type, value: *entry
	size     atomic.Int64
	hits     atomic.Int64
	misses   atomic.Int64
	computes atomic.Int64
}

// NewKeyedCache 创建按类型索引的缓存
func NewKeyedCache() *KeyedCache {
	return &KeyedCache{}
}

// GetOrCompute 获取缓存，不存在时计算并写入
func (c *KeyedCache) GetOrCompute(typ reflect.Type, compute ComputeFunc) (*core.ObjectMetadata, error) {
	if val, ok := c.data.Load(typ); ok {
		c.hits.Add(1)
		e := val.(*entry)
		return e.meta, e.err
	}
	c.misses.Add(1)

	meta, err := compute(typ)
	c.computes.Add(1)

	actual, loaded := c.data.LoadOrStore(typ, &entry{meta: meta, err: err})
	if !loaded {
		c.size.Add(1)
	}
	e := actual.(*entry)
	return e.meta, e.err
}

// Get 只读查询
func (c *KeyedCache) Get(typ reflect.Type) (*core.ObjectMetadata, bool) {
	val, ok := c.data.Load(typ)
	if !ok {
		return nil, false
	}
	e := val.(*entry)
	if e.err != nil {
		return nil, false
	}
	return e.meta, true
}

// Len 已缓存的类型数量
func (c *KeyedCache) Len() int {
	return int(c.size.Load())
}

// Stats 获取统计信息
func (c *KeyedCache) Stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Computes: c.computes.Load(),
		Size:     c.Len(),
	}
}

// ============================================================================
// 单值延迟缓存
// ============================================================================

// LazyCache 绑定单一类型的延迟缓存
// 与 KeyedCache 相同，允许并发重复计算，但只保留第一个结果
type LazyCache struct {
	typ      reflect.Type
	compute  ComputeFunc
	value    atomic.Pointer[entry]
	hits     atomic.Int64
	misses   atomic.Int64
	computes atomic.Int64
}

// NewLazyCache 创建单值延迟缓存
func NewLazyCache(typ reflect.Type, compute ComputeFunc) *LazyCache {
	return &LazyCache{typ: typ, compute: compute}
}

// Type 绑定的类型
func (c *LazyCache) Type() reflect.Type {
	return c.typ
}

// Get 获取元数据，首次调用时计算
func (c *LazyCache) Get() (*core.ObjectMetadata, error) {
	if e := c.value.Load(); e != nil {
		c.hits.Add(1)
		return e.meta, e.err
	}
	c.misses.Add(1)

	meta, err := c.compute(c.typ)
	c.computes.Add(1)
	c.value.CompareAndSwap(nil, &entry{meta: meta, err: err})

	e := c.value.Load()
	return e.meta, e.err
}

// Stats 获取统计信息
func (c *LazyCache) Stats() Stats {
	size := 0
	if c.value.Load() != nil {
		size = 1
	}
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Computes: c.computes.Load(),
		Size:     size,
	}
}
