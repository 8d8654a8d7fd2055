// Package gormplugin 在 gorm 写入前验证模型
package gormplugin

import (
	"reflect"

	"gorm.io/gorm"

	"katydid-common-validator/pkg/validator"
)

const pluginName = "katydid:validator"

// Plugin gorm 插件，在 create/update 之前验证模型
// 验证失败时以 *core.ValidationError 中止语句
type Plugin struct {
	validator *validator.Validator
}

var _ gorm.Plugin = (*Plugin)(nil)

// New 创建插件，v 为 nil 时使用默认验证器
func New(v *validator.Validator) *Plugin {
	if v == nil {
		v = validator.Default()
	}
	return &Plugin{validator: v}
}

// Name 实现 gorm.Plugin
func (p *Plugin) Name() string {
	return pluginName
}

// Initialize 实现 gorm.Plugin，注册回调
func (p *Plugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Create().Before("gorm:create").Register(pluginName+":before_create", p.validate); err != nil {
		return err
	}
	return db.Callback().Update().Before("gorm:update").Register(pluginName+":before_update", p.validate)
}

// validate 回调：验证语句的目标模型
func (p *Plugin) validate(db *gorm.DB) {
	if db.Error != nil || db.Statement == nil {
		return
	}
	// Updates(map) 等非结构体写入没有可验证的模型
	if _, ok := db.Statement.Dest.(map[string]any); ok {
		return
	}

	rv := db.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Struct:
		p.validateValue(db, rv)
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len() && db.Error == nil; i++ {
			p.validateValue(db, reflect.Indirect(rv.Index(i)))
		}
	}
}

func (p *Plugin) validateValue(db *gorm.DB, rv reflect.Value) {
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return
	}
	var target any
	if rv.CanAddr() {
		target = rv.Addr().Interface()
	} else {
		target = rv.Interface()
	}

	summary, err := p.validator.Validate(target, nil)
	if err != nil {
		_ = db.AddError(err)
		return
	}
	if verr := summary.Err(); verr != nil {
		_ = db.AddError(verr)
	}
}
