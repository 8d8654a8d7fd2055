// Package ginbinding 将验证器接入 gin 的参数绑定
package ginbinding

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"katydid-common-validator/pkg/validator"
	"katydid-common-validator/pkg/validator/core"
)

// StructValidator 实现 gin 的 binding.StructValidator
type StructValidator struct {
	validator *validator.Validator
}

var _ binding.StructValidator = (*StructValidator)(nil)

// New 创建 gin 结构体验证器，v 为 nil 时使用默认验证器
func New(v *validator.Validator) *StructValidator {
	if v == nil {
		v = validator.Default()
	}
	return &StructValidator{validator: v}
}

// Install 替换 gin 全局的结构体验证器
func Install(v *validator.Validator) *StructValidator {
	sv := New(v)
	binding.Validator = sv
	return sv
}

// ValidateStruct 实现 binding.StructValidator
// 结构体直接验证，切片和数组逐个验证元素，其他类型忽略
func (s *StructValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}

	value := reflect.ValueOf(obj)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.Struct:
		return s.validate(obj)
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			if err := s.ValidateStruct(value.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

// Engine 实现 binding.StructValidator，返回底层验证器
func (s *StructValidator) Engine() any {
	return s.validator
}

func (s *StructValidator) validate(obj any) error {
	summary, err := s.validator.Validate(obj, nil)
	if err != nil {
		return err
	}
	return summary.Err()
}

// AbortWithValidationError 绑定错误为验证错误时以 422 返回报告并中止请求
// 返回 false 表示 err 不是验证错误，调用方自行处理
func AbortWithValidationError(c *gin.Context, err error) bool {
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, core.NewValidationSummary(verr.Results()))
	return true
}
