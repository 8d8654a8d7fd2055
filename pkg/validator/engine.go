package validator

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"go.uber.org/zap"

	"katydid-common-validator/pkg/validator/core"
	"katydid-common-validator/pkg/validator/metadata"
	"katydid-common-validator/pkg/validator/orchestrator"
)

// engine 两种验证器共享的执行部分
type engine struct {
	inspector    core.Introspector
	orchestrator *orchestrator.Orchestrator
	options      atomic.Pointer[orchestrator.Options]
	plugins      []core.Plugin
	logger       *zap.Logger
}

func newEngine(s *settings) *engine {
	e := &engine{
		inspector:    s.inspector,
		orchestrator: orchestrator.NewOrchestrator(orchestrator.WithLogger(s.logger)),
		plugins:      s.plugins,
		logger:       s.logger,
	}
	opts := s.options
	e.options.Store(&opts)
	return e
}

// Options 当前短路配置
func (e *engine) Options() orchestrator.Options {
	return *e.options.Load()
}

// SetOptions 替换短路配置，对之后开始的验证生效
func (e *engine) SetOptions(options orchestrator.Options) {
	e.options.Store(&options)
}

// Configure 原子地修改短路配置
func (e *engine) Configure(fn func(*orchestrator.Options)) {
	for {
		old := e.options.Load()
		next := *old
		fn(&next)
		if e.options.CompareAndSwap(old, &next) {
			return
		}
	}
}

// extract 计算类型元数据，供缓存调用
func (e *engine) extract(typ reflect.Type) (*core.ObjectMetadata, error) {
	meta, err := metadata.ExtractType(e.inspector, typ)
	if err != nil {
		e.logger.Error("metadata extraction failed", zap.Stringer("type", typ), zap.Error(err))
		return nil, err
	}
	e.logger.Debug("metadata extracted",
		zap.Stringer("type", typ),
		zap.Int("typeRules", len(meta.TypeRules())),
		zap.Int("fields", len(meta.Fields())),
	)
	return meta, nil
}

// run 执行插件和编排流程
func (e *engine) run(meta *core.ObjectMetadata, ctx *core.ValidationContext) (*core.ValidationSummary, error) {
	opts := e.Options()

	for _, p := range e.plugins {
		if !p.Enabled() {
			continue
		}
		if err := p.BeforeValidate(ctx); err != nil {
			return nil, fmt.Errorf("plugin %s before hook failed: %w", p.Name(), err)
		}
	}

	summary := e.orchestrator.Run(meta, ctx, opts)

	for _, p := range e.plugins {
		if !p.Enabled() {
			continue
		}
		if err := p.AfterValidate(ctx, summary); err != nil {
			return nil, fmt.Errorf("plugin %s after hook failed: %w", p.Name(), err)
		}
	}

	return summary, nil
}

// targetType 解析实例的元数据类型（去掉指针层）
func targetType(instance any) (reflect.Type, error) {
	if instance == nil {
		return nil, core.ErrNilInstance
	}
	v := reflect.ValueOf(instance)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, core.ErrNilInstance
		}
		v = v.Elem()
	}
	return v.Type(), nil
}

// topContext 构建顶层上下文，沿用调用方上下文中的共享数据
func topContext(instance any, ctx *core.ValidationContext) *core.ValidationContext {
	var items map[string]any
	if ctx != nil {
		items = ctx.Items()
	}
	return core.NewValidationContext(instance, items)
}
