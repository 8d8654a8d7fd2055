package core

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNilInstance 被验证对象为 nil
	ErrNilInstance = errors.New("validation target cannot be nil")

	// ErrTypeMismatch 上下文中的实例类型与验证器绑定的类型不一致
	ErrTypeMismatch = errors.New("validation target type mismatch")

	// ErrNotStruct 类型不是结构体，无法内省
	ErrNotStruct = errors.New("type is not a struct")
)

// TypeMismatchError 类型不匹配错误
type TypeMismatchError struct {
	Expected reflect.Type
	Actual   reflect.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %v, got %v", ErrTypeMismatch, e.Expected, e.Actual)
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// IntrospectionError 类型内省失败，属于配置错误
type IntrospectionError struct {
	Type reflect.Type
	Err  error
}

func (e *IntrospectionError) Error() string {
	return fmt.Sprintf("introspect %v: %v", e.Type, e.Err)
}

func (e *IntrospectionError) Unwrap() error {
	return e.Err
}
