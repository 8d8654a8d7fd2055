package core

import "reflect"

// Rule 验证规则接口
// 职责：对单个值执行一次校验
//
// 返回 nil 表示校验通过；返回非 nil 表示失败，结果中携带错误消息和相关成员名。
// 规则实例应当无副作用且可重入，同一实例可能被多个 goroutine 同时调用。
type Rule interface {
	Validate(value any, ctx *ValidationContext) *ValidationResult
}

// RequiredRule 必填规则接口
// 一个规则集合中至多应有一个必填规则，它总是最先执行。
// 同一集合出现多个必填规则属于未定义输入，只有第一个会被当作必填规则。
type RequiredRule interface {
	Rule
	IsRequired() bool
}

// IsRequired 判断规则是否为必填类规则
func IsRequired(r Rule) bool {
	if r == nil {
		return false
	}
	req, ok := r.(RequiredRule)
	return ok && req.IsRequired()
}

// FindRequired 按引用扫描规则列表，返回第一个必填规则及其下标
func FindRequired(rules []Rule) (Rule, int) {
	for i, r := range rules {
		if IsRequired(r) {
			return r, i
		}
	}
	return nil, -1
}

// SameRule 判断两个规则是否为同一个实例（引用相等）
//
// 只有指针、map、chan 形态的规则具有身份；值类型规则即使内容相同也不视为同一实例。
// 以下情况同样视为没有身份，宁可保留重复规则也不误删：
//   - 指向零大小类型的指针：不同的零大小对象可能共享同一地址
//   - 函数类型的规则：同一函数字面量生成的闭包共享代码地址，无法区分实例
func SameRule(a, b Rule) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer:
		if va.Type().Elem().Size() == 0 {
			return false
		}
		return va.Pointer() == vb.Pointer()
	case reflect.UnsafePointer, reflect.Map, reflect.Chan:
		return va.Pointer() == vb.Pointer()
	default:
		return false
	}
}
