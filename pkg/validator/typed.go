package validator

import (
	"reflect"

	"go.uber.org/zap"

	"katydid-common-validator/pkg/validator/core"
	"katydid-common-validator/pkg/validator/metadata"
)

// TypedValidator 绑定单一类型的验证器
// 元数据在首次验证时计算一次，之后直接复用。T 可以是结构体或结构体指针。
type TypedValidator[T any] struct {
	*engine
	declared reflect.Type
	cache    *metadata.LazyCache
}

// NewTyped 创建绑定类型 T 的验证器
// WithCache 对该验证器无效
func NewTyped[T any](opts ...Option) *TypedValidator[T] {
	s := newSettings(opts)
	e := newEngine(s)

	declared := reflect.TypeOf((*T)(nil)).Elem()
	typ := declared
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	return &TypedValidator[T]{
		engine:   e,
		declared: declared,
		cache:    metadata.NewLazyCache(typ, e.extract),
	}
}

// Type 绑定的类型
func (v *TypedValidator[T]) Type() reflect.Type {
	return v.declared
}

// Validate 验证对象，ctx 可为 nil
func (v *TypedValidator[T]) Validate(instance T, ctx *core.ValidationContext) (*core.ValidationSummary, error) {
	if _, err := targetType(instance); err != nil {
		v.logger.Warn("invalid validation target", zap.Error(err))
		return nil, err
	}
	meta, err := v.cache.Get()
	if err != nil {
		return nil, err
	}
	return v.run(meta, topContext(instance, ctx))
}

// ValidateContext 实现 core.ContextValidator
// 上下文中的实例不是 T 时返回 *core.TypeMismatchError
func (v *TypedValidator[T]) ValidateContext(ctx *core.ValidationContext) (*core.ValidationSummary, error) {
	if ctx == nil || ctx.Instance() == nil {
		return nil, core.ErrNilInstance
	}
	instance, ok := ctx.Instance().(T)
	if !ok {
		err := &core.TypeMismatchError{Expected: v.declared, Actual: reflect.TypeOf(ctx.Instance())}
		v.logger.Warn("validator used with wrong type", zap.Error(err))
		return nil, err
	}
	return v.Validate(instance, ctx)
}

// Metadata 绑定类型的规则元数据
func (v *TypedValidator[T]) Metadata() (*core.ObjectMetadata, error) {
	return v.cache.Get()
}

// CacheStats 元数据缓存统计
func (v *TypedValidator[T]) CacheStats() metadata.Stats {
	return v.cache.Stats()
}
