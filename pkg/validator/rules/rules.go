// Package rules 提供常用的验证规则实现
//
// 标签规则委托给 go-playground/validator 执行，标签语法与其保持一致。
package rules

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"katydid-common-validator/pkg/validator/core"
)

var (
	defaultEngine *validator.Validate
	engineOnce    sync.Once
)

// Engine 默认的底层验证引擎（单例）
func Engine() *validator.Validate {
	engineOnce.Do(func() {
		defaultEngine = validator.New()
	})
	return defaultEngine
}

// ============================================================================
// 必填规则
// ============================================================================

// RequiredRule 必填规则
// 与 go-playground/validator 的 required 语义一致：可为 nil 的类型要求非 nil，其他类型要求非零值
type RequiredRule struct {
	message string
}

// Required 创建必填规则
func Required() *RequiredRule {
	return &RequiredRule{}
}

// WithMessage 设置自定义消息
func (r *RequiredRule) WithMessage(message string) *RequiredRule {
	r.message = message
	return r
}

// IsRequired 实现 core.RequiredRule
func (r *RequiredRule) IsRequired() bool {
	return true
}

// Validate 实现 core.Rule
func (r *RequiredRule) Validate(value any, ctx *core.ValidationContext) *core.ValidationResult {
	if HasValue(value) {
		return nil
	}
	msg := r.message
	if msg == "" {
		msg = fmt.Sprintf("field '%s' is required", memberLabel(ctx))
	}
	return failure(ctx, msg, "required", "")
}

// HasValue 判断值是否存在
func HasValue(value any) bool {
	if value == nil {
		return false
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return !v.IsNil()
	default:
		return !v.IsZero()
	}
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	return (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil()
}

// ============================================================================
// 标签规则
// ============================================================================

// TagRule 基于 go-playground/validator 标签的规则
//
// 以被验证对象作为父结构体执行，eqfield、required_with 等引用同级字段的标签可以正常工作。
// 值为 nil（含 nil 指针）时视为通过，是否必填由 RequiredRule 负责；
// required_with、excluded_if 等条件标签例外，它们本身就是对 nil 的判断。
type TagRule struct {
	engine  *validator.Validate
	tag     string
	message string
	whenNil bool
}

// nilCheckedTags 值为 nil 时仍需执行的标签
var nilCheckedTags = map[string]struct{}{
	"required_if":          {},
	"required_unless":      {},
	"required_with":        {},
	"required_with_all":    {},
	"required_without":     {},
	"required_without_all": {},
	"excluded_if":          {},
	"excluded_unless":      {},
	"excluded_with":        {},
	"excluded_with_all":    {},
	"excluded_without":     {},
	"excluded_without_all": {},
	"skip_unless":          {},
}

// checksNil 标签表达式中是否含有值为 nil 时仍需执行的标签
func checksNil(tag string) bool {
	for _, tok := range strings.FieldsFunc(tag, func(r rune) bool { return r == ',' || r == '|' }) {
		name, _, _ := strings.Cut(strings.TrimSpace(tok), "=")
		if _, ok := nilCheckedTags[name]; ok {
			return true
		}
	}
	return false
}

// Tag 使用默认引擎创建标签规则
func Tag(tag string) *TagRule {
	return NewTag(Engine(), tag)
}

// NewTag 使用指定引擎创建标签规则
func NewTag(engine *validator.Validate, tag string) *TagRule {
	if engine == nil {
		engine = Engine()
	}
	return &TagRule{engine: engine, tag: tag, whenNil: checksNil(tag)}
}

// WithMessage 设置自定义消息
func (r *TagRule) WithMessage(message string) *TagRule {
	r.message = message
	return r
}

// Expression 标签表达式
func (r *TagRule) Expression() string {
	return r.tag
}

// Validate 实现 core.Rule
func (r *TagRule) Validate(value any, ctx *core.ValidationContext) *core.ValidationResult {
	if value == nil || (!r.whenNil && isNil(value)) {
		return nil
	}
	err := r.run(value, ctx)
	if err == nil {
		return nil
	}

	tag, param := r.tag, ""
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		tag, param = fieldErrs[0].Tag(), fieldErrs[0].Param()
	}

	msg := r.message
	if msg == "" {
		msg = fmt.Sprintf("field '%s' validation failed on tag '%s'", memberLabel(ctx), tag)
	}
	return failure(ctx, msg, tag, param)
}

// run 以上下文中的对象作为父结构体执行标签；没有对象时退化为单值验证
func (r *TagRule) run(value any, ctx *core.ValidationContext) error {
	if ctx != nil && ctx.Instance() != nil {
		return r.engine.VarWithValue(value, ctx.Instance(), r.tag)
	}
	return r.engine.Var(value, r.tag)
}

// CheckFieldTag 以字段零值和所属结构体的零值试运行标签
// 除 CheckTag 能发现的问题外，还能发现引用了无法解析的字段路径、参数格式错误等配置问题
func CheckFieldTag(engine *validator.Validate, tag string, parent, field reflect.Type) (err error) {
	if engine == nil {
		engine = Engine()
	}
	if parent == nil || field == nil {
		return CheckTag(engine, tag)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid validation tag %q: %v", tag, r)
		}
	}()
	_ = engine.VarWithValue(reflect.Zero(field).Interface(), reflect.New(parent).Interface(), tag)
	return nil
}

// CheckTag 检查标签语法，未注册的验证函数等配置错误返回 error
func CheckTag(engine *validator.Validate, tag string) (err error) {
	if engine == nil {
		engine = Engine()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid validation tag %q: %v", tag, r)
		}
	}()
	// 只为触发标签解析；nil 值不会进入 dive 等遍历逻辑
	_ = engine.Var(nil, tag)
	return nil
}

// ============================================================================
// 函数规则
// ============================================================================

// CheckFunc 校验函数，返回 true 表示通过
type CheckFunc func(value any, ctx *core.ValidationContext) bool

// FuncRule 函数规则
type FuncRule struct {
	tag     string
	check   CheckFunc
	message string
}

// Func 创建函数规则
func Func(tag string, check CheckFunc, message string) *FuncRule {
	return &FuncRule{tag: tag, check: check, message: message}
}

// Validate 实现 core.Rule
func (r *FuncRule) Validate(value any, ctx *core.ValidationContext) *core.ValidationResult {
	if r.check == nil || r.check(value, ctx) {
		return nil
	}
	msg := r.message
	if msg == "" {
		msg = fmt.Sprintf("field '%s' validation failed on tag '%s'", memberLabel(ctx), r.tag)
	}
	return failure(ctx, msg, r.tag, "")
}

// failure 构建失败结果，成员名取自上下文
func failure(ctx *core.ValidationContext, msg, tag, param string) *core.ValidationResult {
	var members []string
	if ctx != nil && ctx.MemberName() != "" {
		members = []string{ctx.MemberName()}
	}
	return core.NewValidationResult(msg, members...).WithTag(tag, param)
}

// memberLabel 消息中使用的成员名，对象级规则使用类型名
func memberLabel(ctx *core.ValidationContext) string {
	if ctx == nil {
		return ""
	}
	if ctx.MemberName() != "" {
		return ctx.MemberName()
	}
	if t := ctx.ObjectType(); t != nil {
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		return t.Name()
	}
	return ""
}
