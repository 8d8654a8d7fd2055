// Package config 加载验证器配置
// 支持配置文件和 KATYDID_VALIDATOR_ 前缀的环境变量，环境变量优先
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"katydid-common-validator/pkg/logger"
	"katydid-common-validator/pkg/validator"
	"katydid-common-validator/pkg/validator/introspect"
	"katydid-common-validator/pkg/validator/orchestrator"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "KATYDID_VALIDATOR"

// Config 完整配置
type Config struct {
	Validator ValidatorConfig `mapstructure:"validator"`
	Log       logger.Config   `mapstructure:"log"`
}

// ValidatorConfig 验证器配置
type ValidatorConfig struct {
	orchestrator.Options `mapstructure:",squash"`

	// TagName 结构体规则标签名
	TagName string `mapstructure:"tag_name"`

	// JSONNames 使用 json 标签作为成员名
	JSONNames bool `mapstructure:"json_names"`
}

// Load 从文件加载配置，path 为空时只使用默认值和环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config from %s: %w", path, err)
			}
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper 从已有的 viper 实例加载配置
func LoadFromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// setDefaults 设置默认值
// 所有键都需要有默认值，AutomaticEnv 才能在 Unmarshal 时生效
func setDefaults(v *viper.Viper) {
	opts := orchestrator.DefaultOptions()
	v.SetDefault("validator.stop_if_required_fails", opts.StopIfRequiredFails)
	v.SetDefault("validator.run_model_level_if_field_level_fails", opts.RunModelLevelIfFieldLevelFails)
	v.SetDefault("validator.break_on_first_error", opts.BreakOnFirstError)
	v.SetDefault("validator.tag_name", introspect.DefaultTagName)
	v.SetDefault("validator.json_names", false)

	logCfg := logger.DefaultConfig()
	v.SetDefault("log.level", logCfg.Level)
	v.SetDefault("log.format", logCfg.Format)
	v.SetDefault("log.output", logCfg.Output)
	v.SetDefault("log.max_size_mb", logCfg.MaxSizeMB)
	v.SetDefault("log.max_backups", logCfg.MaxBackups)
	v.SetDefault("log.max_age_days", logCfg.MaxAgeDays)
	v.SetDefault("log.compress", logCfg.Compress)
}

// InspectorOptions 反射内省器选项
func (c ValidatorConfig) InspectorOptions() []introspect.Option {
	opts := []introspect.Option{introspect.WithTagName(c.TagName)}
	if c.JSONNames {
		opts = append(opts, introspect.WithJSONNames())
	}
	return opts
}

// ValidatorOptions 转换为验证器选项
func (c ValidatorConfig) ValidatorOptions() []validator.Option {
	return []validator.Option{
		validator.WithOptions(c.Options),
		validator.WithIntrospector(introspect.NewReflectInspector(c.InspectorOptions()...)),
	}
}

// NewValidator 根据配置创建验证器和日志器
func (c *Config) NewValidator(extra ...validator.Option) (*validator.Validator, error) {
	log, err := logger.New(c.Log)
	if err != nil {
		return nil, err
	}
	opts := append(c.Validator.ValidatorOptions(), validator.WithLogger(log))
	return validator.New(append(opts, extra...)...), nil
}
