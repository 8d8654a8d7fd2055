package introspect

import (
	"reflect"

	"katydid-common-validator/pkg/validator/core"
)

// indexAccessor 按字段索引路径访问字段（支持嵌入字段）
func indexAccessor(index []int) core.FieldAccessor {
	return func(target reflect.Value) (any, bool) {
		target, ok := derefStruct(target)
		if !ok {
			return nil, false
		}
		fv, err := target.FieldByIndexErr(index)
		if err != nil || !fv.IsValid() || !fv.CanInterface() {
			return nil, false
		}
		return fv.Interface(), true
	}
}

// nameAccessor 按字段名访问字段
func nameAccessor(name string) core.FieldAccessor {
	return func(target reflect.Value) (any, bool) {
		target, ok := derefStruct(target)
		if !ok {
			return nil, false
		}
		sf, found := target.Type().FieldByName(name)
		if !found {
			return nil, false
		}
		return indexAccessor(sf.Index)(target)
	}
}

func derefStruct(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return v, true
}

// indirectType 去掉指针层
func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
