package orchestrator

import (
	"reflect"

	"go.uber.org/zap"

	"katydid-common-validator/pkg/validator/collector"
	"katydid-common-validator/pkg/validator/core"
)

// Orchestrator 验证编排器
// 职责：按 字段级 → 类型级 → 自定义钩子 的顺序执行规则，并应用短路配置
//
// 编排器本身无状态，可在 goroutine 间共享；每次 Run 使用独立的错误收集器。
type Orchestrator struct {
	logger *zap.Logger
}

// OrchestratorOption 编排器选项
type OrchestratorOption func(*Orchestrator)

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator 创建验证编排器
func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run 执行完整的验证流程
// ctx 为顶层上下文，其中的实例类型必须与 meta 对应
func (o *Orchestrator) Run(meta *core.ObjectMetadata, ctx *core.ValidationContext, opts Options) *core.ValidationSummary {
	ec := collector.NewErrorCollector()
	instance := ctx.Instance()
	target := reflect.ValueOf(instance)

	// 1. 字段级规则
	for _, field := range meta.Fields() {
		fieldCtx := ctx.ForMember(field.Name())
		failures := o.Evaluate(field.Value(target), fieldCtx, field.Rules(), opts)
		ec.AddAll(failures)

		if opts.BreakOnFirstError && len(failures) > 0 {
			o.debug("break on first error", meta, "field", zap.String("field", field.Name()))
			return ec.Summary()
		}
	}

	if ec.HasErrors() && opts.skipModelLevel() {
		o.debug("skip model level validation", meta, "field", zap.Int("errors", ec.Count()))
		return ec.Summary()
	}

	// 2. 类型级规则
	failures := o.Evaluate(instance, ctx, meta.TypeRules(), opts)
	ec.AddAll(failures)

	if opts.BreakOnFirstError && len(failures) > 0 {
		o.debug("break on first error", meta, "type")
		return ec.Summary()
	}

	if ec.HasErrors() && opts.skipModelLevel() {
		o.debug("skip custom validation", meta, "type", zap.Int("errors", ec.Count()))
		return ec.Summary()
	}

	// 3. 自定义钩子
	if cv, ok := customValidator(instance); ok {
		results := cv.CustomValidation(ctx)
		if opts.BreakOnFirstError {
			results = firstNonNil(results)
		}
		ec.AddAll(results)
	}

	return ec.Summary()
}

// Evaluate 执行单个成员的规则
//
// 必填规则（至多一个，按引用扫描）最先执行；其余规则按声明顺序执行并跳过必填规则。
// 必填失败总会被记录；StopIfRequiredFails 或 BreakOnFirstError 时立即返回。
func (o *Orchestrator) Evaluate(value any, ctx *core.ValidationContext, rules []core.Rule, opts Options) []*core.ValidationResult {
	if len(rules) == 0 {
		return nil
	}

	var failures []*core.ValidationResult

	required, requiredIdx := core.FindRequired(rules)
	if required != nil {
		if res := required.Validate(value, ctx); res != nil {
			failures = append(failures, res)
			if opts.StopIfRequiredFails || opts.BreakOnFirstError {
				return failures
			}
		}
	}

	for i, rule := range rules {
		if i == requiredIdx || rule == nil {
			continue
		}
		res := rule.Validate(value, ctx)
		if res == nil {
			continue
		}
		failures = append(failures, res)
		if opts.BreakOnFirstError {
			break
		}
	}

	return failures
}

// customValidator 查找自定义钩子，值接收者传入时也尝试指针方法集
func customValidator(instance any) (core.CustomValidator, bool) {
	if cv, ok := instance.(core.CustomValidator); ok {
		return cv, true
	}
	v := reflect.ValueOf(instance)
	if !v.IsValid() || v.Kind() == reflect.Pointer {
		return nil, false
	}
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	cv, ok := ptr.Interface().(core.CustomValidator)
	return cv, ok
}

func firstNonNil(results []*core.ValidationResult) []*core.ValidationResult {
	for _, r := range results {
		if r != nil {
			return []*core.ValidationResult{r}
		}
	}
	return nil
}

func (o *Orchestrator) debug(msg string, meta *core.ObjectMetadata, stage string, fields ...zap.Field) {
	if ce := o.logger.Check(zap.DebugLevel, msg); ce != nil {
		ce.Write(append(fields, zap.Stringer("type", typeName{meta.Type()}), zap.String("stage", stage))...)
	}
}

// typeName 延迟格式化类型名
type typeName struct {
	t reflect.Type
}

func (n typeName) String() string {
	if n.t == nil {
		return "<nil>"
	}
	return n.t.String()
}
