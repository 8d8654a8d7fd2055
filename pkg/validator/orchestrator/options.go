package orchestrator

// Options 短路行为配置
// 零值并不是默认配置，请使用 DefaultOptions
type Options struct {
	// StopIfRequiredFails 必填规则失败时，不再执行该成员的其他规则（其他成员照常执行）
	StopIfRequiredFails bool `mapstructure:"stop_if_required_fails" json:"stop_if_required_fails" yaml:"stop_if_required_fails"`

	// RunModelLevelIfFieldLevelFails 为 false 时，字段级存在失败则跳过类型级规则和自定义钩子
	RunModelLevelIfFieldLevelFails bool `mapstructure:"run_model_level_if_field_level_fails" json:"run_model_level_if_field_level_fails" yaml:"run_model_level_if_field_level_fails"`

	// BreakOnFirstError 出现第一个失败后立即停止整个流程
	BreakOnFirstError bool `mapstructure:"break_on_first_error" json:"break_on_first_error" yaml:"break_on_first_error"`
}

// DefaultOptions 默认配置，行为与普通验证器兼容：执行全部规则
func DefaultOptions() Options {
	return Options{
		StopIfRequiredFails:            false,
		RunModelLevelIfFieldLevelFails: true,
		BreakOnFirstError:              false,
	}
}

// StrictOptions 严格配置：必填失败即停止该成员，字段级失败时跳过对象级验证
func StrictOptions() Options {
	return Options{
		StopIfRequiredFails:            true,
		RunModelLevelIfFieldLevelFails: false,
		BreakOnFirstError:              false,
	}
}

// skipModelLevel 已有失败时是否跳过后续阶段
func (o Options) skipModelLevel() bool {
	return !o.RunModelLevelIfFieldLevelFails || o.BreakOnFirstError
}
