package core

import "reflect"

// FieldAccessor 字段访问器
// target 为已解引用的结构体值；字段不可访问时返回 ok=false
type FieldAccessor func(target reflect.Value) (value any, ok bool)

// FieldMetadata 单个字段的规则元数据
type FieldMetadata struct {
	name     string
	rules    []Rule
	accessor FieldAccessor
}

// NewFieldMetadata 创建字段元数据
func NewFieldMetadata(name string, rules []Rule, accessor FieldAccessor) FieldMetadata {
	return FieldMetadata{name: name, rules: rules, accessor: accessor}
}

// Name 字段名
func (f FieldMetadata) Name() string {
	return f.name
}

// Rules 字段规则，返回的切片只读
func (f FieldMetadata) Rules() []Rule {
	return f.rules
}

// Value 从结构体值中读取字段
func (f FieldMetadata) Value(target reflect.Value) any {
	if f.accessor == nil || !target.IsValid() {
		return nil
	}
	v, ok := f.accessor(target)
	if !ok {
		return nil
	}
	return v
}

// ObjectMetadata 类型的规则元数据
//
// 每个类型只计算一次，构建后不再修改，可在 goroutine 间无锁共享。
type ObjectMetadata struct {
	typ       reflect.Type
	typeRules []Rule
	fields    []FieldMetadata
	index     map[string]int
}

// NewObjectMetadata 创建对象元数据
// 规则列表为空的字段会被忽略；同名字段以后出现的为准
func NewObjectMetadata(typ reflect.Type, typeRules []Rule, fields []FieldMetadata) *ObjectMetadata {
	m := &ObjectMetadata{
		typ:       typ,
		typeRules: typeRules,
		fields:    make([]FieldMetadata, 0, len(fields)),
		index:     make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if len(f.rules) == 0 {
			continue
		}
		if i, ok := m.index[f.name]; ok {
			m.fields[i] = f
			continue
		}
		m.index[f.name] = len(m.fields)
		m.fields = append(m.fields, f)
	}
	return m
}

// Type 元数据对应的类型
func (m *ObjectMetadata) Type() reflect.Type {
	return m.typ
}

// TypeRules 类型级规则，返回的切片只读
func (m *ObjectMetadata) TypeRules() []Rule {
	return m.typeRules
}

// Fields 带规则的字段，按枚举顺序
func (m *ObjectMetadata) Fields() []FieldMetadata {
	return m.fields
}

// FieldRules 获取字段规则，字段不存在或无规则时返回 nil
func (m *ObjectMetadata) FieldRules(name string) []Rule {
	if i, ok := m.index[name]; ok {
		return m.fields[i].rules
	}
	return nil
}

// IsEmpty 类型及其字段上都没有任何规则
func (m *ObjectMetadata) IsEmpty() bool {
	return len(m.typeRules) == 0 && len(m.fields) == 0
}
