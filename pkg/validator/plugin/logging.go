package plugin

import (
	"go.uber.org/zap"

	"katydid-common-validator/pkg/validator/core"
)

// LoggingPlugin 日志插件
// 职责：记录每次验证的开始和结果
type LoggingPlugin struct {
	enabled bool
	logger  *zap.Logger
}

// NewLoggingPlugin 创建日志插件
func NewLoggingPlugin(logger *zap.Logger) *LoggingPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingPlugin{
		enabled: true,
		logger:  logger.Named("validator"),
	}
}

// SetEnabled 启用或禁用插件
func (p *LoggingPlugin) SetEnabled(enabled bool) *LoggingPlugin {
	p.enabled = enabled
	return p
}

// Name 插件名称
func (p *LoggingPlugin) Name() string {
	return "LoggingPlugin"
}

// BeforeValidate 验证前钩子
func (p *LoggingPlugin) BeforeValidate(ctx *core.ValidationContext) error {
	p.logger.Debug("validation started", zap.Stringer("type", typeOf(ctx)))
	return nil
}

// AfterValidate 验证后钩子
func (p *LoggingPlugin) AfterValidate(ctx *core.ValidationContext, summary *core.ValidationSummary) error {
	if summary == nil {
		return nil
	}
	if summary.Success {
		p.logger.Debug("validation passed", zap.Stringer("type", typeOf(ctx)))
		return nil
	}
	p.logger.Info("validation failed",
		zap.Stringer("type", typeOf(ctx)),
		zap.Int("errorCount", len(summary.Results)),
		zap.Strings("members", members(summary)),
	)
	return nil
}

// Enabled 是否启用
func (p *LoggingPlugin) Enabled() bool {
	return p.enabled
}

type stringer string

func (s stringer) String() string { return string(s) }

func typeOf(ctx *core.ValidationContext) stringer {
	if ctx == nil || ctx.ObjectType() == nil {
		return "<nil>"
	}
	return stringer(ctx.ObjectType().String())
}

// members 去重后的失败成员名
func members(summary *core.ValidationSummary) []string {
	seen := make(map[string]struct{}, len(summary.Results))
	out := make([]string, 0, len(summary.Results))
	for _, r := range summary.Results {
		for _, m := range r.MemberNames {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}
