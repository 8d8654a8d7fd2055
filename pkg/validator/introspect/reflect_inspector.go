// Package introspect 提供类型内省实现
//
// ReflectInspector 通过反射读取结构体标签；Registry 使用预先注册（或代码生成）的类型描述。
package introspect

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"katydid-common-validator/pkg/validator/core"
	"katydid-common-validator/pkg/validator/rules"
)

// DefaultTagName 默认的规则标签名
const DefaultTagName = "validate"

// TypeRuleProvider 类型级规则提供者
// 在类型（值或指针接收者）上实现，返回声明在该类型上的规则
type TypeRuleProvider interface {
	TypeRules() []core.Rule
}

var typeRuleProviderType = reflect.TypeOf((*TypeRuleProvider)(nil)).Elem()

// ReflectInspector 基于反射的类型内省器
//
// 字段规则来自结构体标签（go-playground/validator 语法），类型级规则来自
// TypeRuleProvider 或 RegisterTypeRules。与字段值类型关联的规则也会出现在字段规则中，
// 由元数据提取按引用去重。
type ReflectInspector struct {
	engine   *validator.Validate
	tagName  string
	nameFunc func(reflect.StructField) string

	mu        sync.RWMutex
	typeRules map[reflect.Type][]core.Rule
}

// Option 内省器选项
type Option func(*ReflectInspector)

// WithEngine 指定底层验证引擎（用于共享自定义验证函数和别名）
func WithEngine(engine *validator.Validate) Option {
	return func(i *ReflectInspector) {
		if engine != nil {
			i.engine = engine
		}
	}
}

// WithTagName 指定规则标签名
func WithTagName(name string) Option {
	return func(i *ReflectInspector) {
		if name != "" {
			i.tagName = name
		}
	}
}

// WithNameFunc 指定成员名生成函数
func WithNameFunc(fn func(reflect.StructField) string) Option {
	return func(i *ReflectInspector) {
		if fn != nil {
			i.nameFunc = fn
		}
	}
}

// WithJSONNames 使用 json 标签作为成员名
func WithJSONNames() Option {
	return WithNameFunc(JSONName)
}

// NewReflectInspector 创建反射内省器
func NewReflectInspector(opts ...Option) *ReflectInspector {
	i := &ReflectInspector{
		engine:    rules.Engine(),
		tagName:   DefaultTagName,
		nameFunc:  FieldName,
		typeRules: make(map[reflect.Type][]core.Rule),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Engine 底层验证引擎
func (i *ReflectInspector) Engine() *validator.Validate {
	return i.engine
}

// RegisterTypeRules 为类型注册类型级规则
// 必须在该类型首次验证之前注册，元数据缓存后不会再读取
func (i *ReflectInspector) RegisterTypeRules(typ reflect.Type, typeRules ...core.Rule) {
	typ = indirectType(typ)
	if typ == nil {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.typeRules[typ] = append(i.typeRules[typ], typeRules...)
}

// Describe 实现 core.Introspector
func (i *ReflectInspector) Describe(typ reflect.Type) (*core.TypeDescriptor, error) {
	typ = indirectType(typ)
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v", core.ErrNotStruct, typ)
	}

	desc := &core.TypeDescriptor{
		Type:  typ,
		Rules: i.rulesOf(typ),
	}

	for _, field := range reflect.VisibleFields(typ) {
		// 跳过未导出字段和嵌入字段本身（其导出字段已被提升）
		if !field.IsExported() || field.Anonymous {
			continue
		}

		tag := field.Tag.Get(i.tagName)
		if tag == "-" {
			continue
		}

		direct, err := i.parseTag(tag, typ, field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		inherited := i.rulesOf(indirectType(field.Type))
		fieldRules := make([]core.Rule, 0, len(direct)+len(inherited))
		fieldRules = append(fieldRules, direct...)
		fieldRules = append(fieldRules, inherited...)

		desc.Fields = append(desc.Fields, core.FieldDescriptor{
			Name:      i.nameFunc(field),
			Type:      field.Type,
			Rules:     fieldRules,
			TypeRules: inherited,
			Accessor:  indexAccessor(field.Index),
		})
	}

	return desc, nil
}

// rulesOf 类型上声明的规则：注册的规则在前，TypeRuleProvider 提供的在后
func (i *ReflectInspector) rulesOf(typ reflect.Type) []core.Rule {
	if typ == nil {
		return nil
	}

	i.mu.RLock()
	registered := i.typeRules[typ]
	i.mu.RUnlock()

	out := make([]core.Rule, 0, len(registered))
	out = append(out, registered...)

	if typ.Kind() != reflect.Interface && reflect.PointerTo(typ).Implements(typeRuleProviderType) {
		provider := reflect.New(typ).Interface().(TypeRuleProvider)
		out = append(out, provider.TypeRules()...)
	}
	return out
}

// parseTag 将标签拆分为规则
//
// required 单独成为必填规则；其余每个标签成为一条规则。
// 出现 omitempty 或 dive/keys 时，除 required 外的标签合并为一条复合规则，保持其语义。
// 每条规则都以 parent 的零值试运行一次，引用不存在的字段路径等错误在内省时返回。
func (i *ReflectInspector) parseTag(tag string, parent, fieldType reflect.Type) ([]core.Rule, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, nil
	}

	tokens := strings.Split(tag, ",")
	out := make([]core.Rule, 0, len(tokens))
	rest := make([]string, 0, len(tokens))
	composite := false

loop:
	for idx, tok := range tokens {
		tok = strings.TrimSpace(tok)
		switch tok {
		case "":
			continue
		case "dive", "keys":
			composite = true
			rest = append(rest, tokens[idx:]...)
			break loop
		case "omitempty":
			composite = true
			rest = append(rest, tok)
		case "required":
			out = append(out, rules.Required())
		default:
			rest = append(rest, tok)
		}
	}

	if len(rest) == 0 {
		return out, nil
	}

	if composite {
		expr := strings.Join(rest, ",")
		if err := rules.CheckFieldTag(i.engine, expr, parent, fieldType); err != nil {
			return nil, err
		}
		return append(out, rules.NewTag(i.engine, expr)), nil
	}

	for _, tok := range rest {
		if err := rules.CheckFieldTag(i.engine, tok, parent, fieldType); err != nil {
			return nil, err
		}
		out = append(out, rules.NewTag(i.engine, tok))
	}
	return out, nil
}

// FieldName 使用结构体字段名作为成员名
func FieldName(field reflect.StructField) string {
	return field.Name
}

// JSONName 使用 json 标签作为成员名，未设置时回退到字段名
func JSONName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}
