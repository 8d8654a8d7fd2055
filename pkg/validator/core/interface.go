package core

import "reflect"

// ================================
// 核心接口定义
// ================================

// ContextValidator 基于上下文的验证入口
// 根据上下文中实例的运行时类型分派；绑定单一类型的实现在类型不匹配时返回 ErrTypeMismatch
type ContextValidator interface {
	ValidateContext(ctx *ValidationContext) (*ValidationSummary, error)
}

// CustomValidator 自定义对象级验证钩子
// 在字段级和类型级规则之后执行，返回的每条结果都会原样追加到报告中
type CustomValidator interface {
	CustomValidation(ctx *ValidationContext) []*ValidationResult
}

// Introspector 类型内省接口
// 职责：列出类型上声明的规则、字段以及字段上的规则
type Introspector interface {
	Describe(typ reflect.Type) (*TypeDescriptor, error)
}

// TypeDescriptor 类型描述
type TypeDescriptor struct {
	// Type 被描述的结构体类型
	Type reflect.Type

	// Rules 直接声明在类型上的规则
	Rules []Rule

	// Fields 字段描述，按声明顺序
	Fields []FieldDescriptor
}

// FieldDescriptor 字段描述
type FieldDescriptor struct {
	Name string
	Type reflect.Type

	// Rules 字段上可见的全部规则，内省机制可能把字段类型上的规则一并带出
	Rules []Rule

	// TypeRules 字段值类型上声明的规则，用于按引用去重
	TypeRules []Rule

	Accessor FieldAccessor
}

// Plugin 插件接口
// 在整个验证流程前后执行
type Plugin interface {
	// Name 插件名称
	Name() string

	// BeforeValidate 验证前钩子，返回错误将中止本次验证
	BeforeValidate(ctx *ValidationContext) error

	// AfterValidate 验证后钩子
	AfterValidate(ctx *ValidationContext, summary *ValidationSummary) error

	// Enabled 是否启用
	Enabled() bool
}
