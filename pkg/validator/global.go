package validator

import (
	"sync"

	"katydid-common-validator/pkg/validator/core"
)

var (
	// defaultValidator 默认验证器实例，全局单例
	defaultValidator *Validator
	// once 确保默认验证器只初始化一次
	once sync.Once
	mu   sync.RWMutex
)

// Default 获取默认验证器实例
func Default() *Validator {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if defaultValidator == nil {
			defaultValidator = New()
		}
	})
	mu.RLock()
	defer mu.RUnlock()
	return defaultValidator
}

// SetDefault 替换默认验证器，nil 被忽略
func SetDefault(v *Validator) {
	if v == nil {
		return
	}
	once.Do(func() {})
	mu.Lock()
	defer mu.Unlock()
	defaultValidator = v
}

// Validate 使用默认验证器验证对象
func Validate(instance any) (*core.ValidationSummary, error) {
	return Default().Validate(instance, nil)
}

// ValidateContext 使用默认验证器按上下文验证
func ValidateContext(ctx *core.ValidationContext) (*core.ValidationSummary, error) {
	return Default().ValidateContext(ctx)
}
