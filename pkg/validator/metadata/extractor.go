package metadata

import (
	"reflect"

	"katydid-common-validator/pkg/validator/core"
)

// Extract 由类型描述生成对象元数据
//
// 纯函数：相同描述总是得到相同结果。
// 字段类型上的规则只在同一实例同时出现在字段规则中时才会被移除（引用相等），
// 两个配置相同但彼此独立的规则实例都会保留。
func Extract(desc *core.TypeDescriptor) *core.ObjectMetadata {
	if desc == nil {
		return core.NewObjectMetadata(nil, nil, nil)
	}

	typeRules := make([]core.Rule, 0, len(desc.Rules))
	for _, r := range desc.Rules {
		if r != nil {
			typeRules = append(typeRules, r)
		}
	}

	fields := make([]core.FieldMetadata, 0, len(desc.Fields))
	for _, fd := range desc.Fields {
		rules := dedupe(fd.Rules, fd.TypeRules)
		if len(rules) == 0 {
			continue
		}
		fields = append(fields, core.NewFieldMetadata(fd.Name, rules, fd.Accessor))
	}

	return core.NewObjectMetadata(desc.Type, typeRules, fields)
}

// ExtractType 内省类型并生成元数据
// 内省失败包装为 *core.IntrospectionError
func ExtractType(inspector core.Introspector, typ reflect.Type) (*core.ObjectMetadata, error) {
	desc, err := inspector.Describe(typ)
	if err != nil {
		return nil, &core.IntrospectionError{Type: typ, Err: err}
	}
	return Extract(desc), nil
}

// dedupe 从字段规则中移除与类型规则为同一实例的规则
func dedupe(fieldRules, typeRules []core.Rule) []core.Rule {
	out := make([]core.Rule, 0, len(fieldRules))
	for _, r := range fieldRules {
		if r == nil || inherited(r, typeRules) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func inherited(r core.Rule, typeRules []core.Rule) bool {
	for _, tr := range typeRules {
		if core.SameRule(r, tr) {
			return true
		}
	}
	return false
}
