// Package validator 提供可配置短路行为的对象验证器
//
// 规则元数据按类型只提取一次并缓存，验证按以下顺序进行：
//
//  1. 字段级规则（字段按声明顺序，必填规则总是最先执行）
//  2. 类型级规则
//  3. 自定义钩子（实现 core.CustomValidator 的对象）
//
// 三个独立的配置项控制短路行为，参见 orchestrator.Options。
//
// 示例：
//
//	type User struct {
//	    Name  string `validate:"required,min=2,max=50"`
//	    Email string `validate:"required,email"`
//	}
//
//	v := validator.New(validator.WithStopIfRequiredFails(true))
//	summary, err := v.Validate(&User{}, nil)
package validator

import (
	"reflect"

	"go.uber.org/zap"

	"katydid-common-validator/pkg/validator/core"
	"katydid-common-validator/pkg/validator/metadata"
)

// Validator 多类型验证器
// 任意结构体实例都可验证，类型元数据从按类型索引的缓存中获取。并发安全。
type Validator struct {
	*engine
	cache *metadata.KeyedCache
}

var _ core.ContextValidator = (*Validator)(nil)

// New 创建验证器
func New(opts ...Option) *Validator {
	s := newSettings(opts)
	return &Validator{
		engine: newEngine(s),
		cache:  s.cache,
	}
}

// Validate 验证对象
// ctx 可为 nil；非 nil 时其共享数据会传递给所有规则
func (v *Validator) Validate(instance any, ctx *core.ValidationContext) (*core.ValidationSummary, error) {
	meta, err := v.metadataOf(instance)
	if err != nil {
		return nil, err
	}
	return v.run(meta, topContext(instance, ctx))
}

// ValidateContext 实现 core.ContextValidator，按上下文中实例的运行时类型验证
func (v *Validator) ValidateContext(ctx *core.ValidationContext) (*core.ValidationSummary, error) {
	if ctx == nil {
		return nil, core.ErrNilInstance
	}
	return v.Validate(ctx.Instance(), ctx)
}

// Metadata 获取类型的规则元数据
func (v *Validator) Metadata(typ reflect.Type) (*core.ObjectMetadata, error) {
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil {
		return nil, core.ErrNilInstance
	}
	return v.cache.GetOrCompute(typ, v.extract)
}

// CacheStats 元数据缓存统计
func (v *Validator) CacheStats() metadata.Stats {
	return v.cache.Stats()
}

func (v *Validator) metadataOf(instance any) (*core.ObjectMetadata, error) {
	typ, err := targetType(instance)
	if err != nil {
		v.logger.Warn("invalid validation target", zap.Error(err))
		return nil, err
	}
	return v.cache.GetOrCompute(typ, v.extract)
}
