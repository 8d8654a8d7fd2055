package validator

import (
	"go.uber.org/zap"

	"katydid-common-validator/pkg/validator/core"
	"katydid-common-validator/pkg/validator/introspect"
	"katydid-common-validator/pkg/validator/metadata"
	"katydid-common-validator/pkg/validator/orchestrator"
)

// settings 构建验证器所需的依赖
type settings struct {
	inspector core.Introspector
	cache     *metadata.KeyedCache
	logger    *zap.Logger
	plugins   []core.Plugin
	options   orchestrator.Options
}

func newSettings(opts []Option) *settings {
	s := &settings{
		logger:  zap.NewNop(),
		plugins: make([]core.Plugin, 0),
		options: orchestrator.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.inspector == nil {
		s.inspector = introspect.NewReflectInspector()
	}
	if s.cache == nil {
		s.cache = metadata.NewKeyedCache()
	}
	return s
}

// Option 验证器选项
type Option func(*settings)

// WithIntrospector 设置类型内省器，默认使用反射内省器
func WithIntrospector(inspector core.Introspector) Option {
	return func(s *settings) {
		if inspector != nil {
			s.inspector = inspector
		}
	}
}

// WithCache 设置元数据缓存，多个验证器可共享同一缓存（须使用相同的内省器）
func WithCache(cache *metadata.KeyedCache) Option {
	return func(s *settings) {
		if cache != nil {
			s.cache = cache
		}
	}
}

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPlugins 添加插件
func WithPlugins(plugins ...core.Plugin) Option {
	return func(s *settings) {
		for _, p := range plugins {
			if p != nil {
				s.plugins = append(s.plugins, p)
			}
		}
	}
}

// WithOptions 设置完整的短路配置
func WithOptions(options orchestrator.Options) Option {
	return func(s *settings) {
		s.options = options
	}
}

// WithStopIfRequiredFails 设置必填失败是否停止该成员的其他规则
func WithStopIfRequiredFails(stop bool) Option {
	return func(s *settings) {
		s.options.StopIfRequiredFails = stop
	}
}

// WithRunModelLevelIfFieldLevelFails 设置字段级失败时是否继续执行对象级验证
func WithRunModelLevelIfFieldLevelFails(run bool) Option {
	return func(s *settings) {
		s.options.RunModelLevelIfFieldLevelFails = run
	}
}

// WithBreakOnFirstError 设置是否在第一个错误时停止
func WithBreakOnFirstError(stop bool) Option {
	return func(s *settings) {
		s.options.BreakOnFirstError = stop
	}
}

// Strict 严格模式，等价于 WithOptions(orchestrator.StrictOptions())
func Strict() Option {
	return WithOptions(orchestrator.StrictOptions())
}
