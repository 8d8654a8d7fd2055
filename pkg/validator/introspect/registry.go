package introspect

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"katydid-common-validator/pkg/validator/core"
)

// ErrNotRegistered 类型未注册
var ErrNotRegistered = errors.New("type not registered")

// Registry 静态类型描述注册表
// 适用于代码生成或手工维护的描述，规则实例由调用方持有，引用身份保持不变
type Registry struct {
	mu    sync.RWMutex
	types map[reflect.Type]*core.TypeDescriptor
}

// NewRegistry 创建注册表
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[reflect.Type]*core.TypeDescriptor),
	}
}

// Register 注册类型描述，未设置访问器的字段按字段名访问
func (r *Registry) Register(desc *core.TypeDescriptor) {
	if desc == nil || desc.Type == nil {
		return
	}
	desc.Type = indirectType(desc.Type)
	for idx := range desc.Fields {
		if desc.Fields[idx].Accessor == nil {
			desc.Fields[idx].Accessor = nameAccessor(desc.Fields[idx].Name)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[desc.Type] = desc
}

// Describe 实现 core.Introspector
func (r *Registry) Describe(typ reflect.Type) (*core.TypeDescriptor, error) {
	typ = indirectType(typ)

	r.mu.RLock()
	desc, ok := r.types[typ]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNotRegistered, typ)
	}
	return desc, nil
}

// ============================================================================
// 描述构建器
// ============================================================================

// DescriptorBuilder 类型描述构建器
type DescriptorBuilder struct {
	desc *core.TypeDescriptor
}

// For 为类型 T 创建描述构建器
func For[T any]() *DescriptorBuilder {
	return NewDescriptorBuilder(reflect.TypeOf((*T)(nil)).Elem())
}

// NewDescriptorBuilder 创建描述构建器
func NewDescriptorBuilder(typ reflect.Type) *DescriptorBuilder {
	return &DescriptorBuilder{
		desc: &core.TypeDescriptor{Type: indirectType(typ)},
	}
}

// TypeRules 添加类型级规则
func (b *DescriptorBuilder) TypeRules(typeRules ...core.Rule) *DescriptorBuilder {
	b.desc.Rules = append(b.desc.Rules, typeRules...)
	return b
}

// Field 添加字段规则
func (b *DescriptorBuilder) Field(name string, fieldRules ...core.Rule) *DescriptorBuilder {
	return b.FieldWithTypeRules(name, nil, fieldRules...)
}

// FieldWithTypeRules 添加字段规则，并声明字段值类型上的规则
func (b *DescriptorBuilder) FieldWithTypeRules(name string, typeRules []core.Rule, fieldRules ...core.Rule) *DescriptorBuilder {
	fd := core.FieldDescriptor{
		Name:      name,
		Rules:     fieldRules,
		TypeRules: typeRules,
	}
	if b.desc.Type != nil && b.desc.Type.Kind() == reflect.Struct {
		if sf, ok := b.desc.Type.FieldByName(name); ok {
			fd.Type = sf.Type
			fd.Accessor = indexAccessor(sf.Index)
		}
	}
	b.desc.Fields = append(b.desc.Fields, fd)
	return b
}

// Build 返回类型描述
func (b *DescriptorBuilder) Build() *core.TypeDescriptor {
	return b.desc
}

// RegisterTo 构建并注册到注册表
func (b *DescriptorBuilder) RegisterTo(r *Registry) *core.TypeDescriptor {
	desc := b.Build()
	r.Register(desc)
	return desc
}
