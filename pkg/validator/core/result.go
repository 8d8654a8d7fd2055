package core

import (
	"fmt"
	"strings"
)

// ValidationResult 单条验证失败结果
type ValidationResult struct {
	// Message 用户可读的错误消息
	Message string `json:"message" yaml:"message"`

	// MemberNames 该错误涉及的成员名
	MemberNames []string `json:"member_names,omitempty" yaml:"member_names,omitempty"`

	// Tag 触发失败的规则标签（如 required, min），可为空
	Tag string `json:"tag,omitempty" yaml:"tag,omitempty"`

	// Param 规则参数（如 min=3 中的 "3"），可为空
	Param string `json:"param,omitempty" yaml:"param,omitempty"`
}

// NewValidationResult 创建验证失败结果
func NewValidationResult(message string, memberNames ...string) *ValidationResult {
	return &ValidationResult{
		Message:     message,
		MemberNames: memberNames,
	}
}

// WithTag 设置规则标签和参数
func (r *ValidationResult) WithTag(tag, param string) *ValidationResult {
	r.Tag = tag
	r.Param = param
	return r
}

// Error 实现 error 接口
func (r *ValidationResult) Error() string {
	if r.Message != "" {
		return r.Message
	}
	if len(r.MemberNames) > 0 {
		return fmt.Sprintf("field '%s' validation failed on tag '%s'", strings.Join(r.MemberNames, ","), r.Tag)
	}
	return "validation failed"
}

// ValidationSummary 一次验证的完整报告
// Results 按规则执行顺序排列：字段级、类型级、自定义钩子
type ValidationSummary struct {
	Success bool                `json:"success" yaml:"success"`
	Results []*ValidationResult `json:"results" yaml:"results"`
}

// NewValidationSummary 根据结果列表构建报告
func NewValidationSummary(results []*ValidationResult) *ValidationSummary {
	if results == nil {
		results = make([]*ValidationResult, 0)
	}
	return &ValidationSummary{
		Success: len(results) == 0,
		Results: results,
	}
}

// HasErrors 是否有错误
func (s *ValidationSummary) HasErrors() bool {
	return len(s.Results) > 0
}

// Err 转换为 error，成功时返回 nil
func (s *ValidationSummary) Err() error {
	if s == nil || !s.HasErrors() {
		return nil
	}
	return NewValidationError(s.Results)
}

// ValidationError 验证错误集合
type ValidationError struct {
	results []*ValidationResult
}

// NewValidationError 创建验证错误
func NewValidationError(results []*ValidationResult) *ValidationError {
	return &ValidationError{results: results}
}

// Results 获取所有失败结果
func (e *ValidationError) Results() []*ValidationResult {
	return e.results
}

// Count 错误数量
func (e *ValidationError) Count() int {
	return len(e.results)
}

// Error 实现 error 接口
func (e *ValidationError) Error() string {
	switch len(e.results) {
	case 0:
		return "validation failed"
	case 1:
		return e.results[0].Error()
	}

	var builder strings.Builder
	builder.Grow(len(e.results) * 48)
	builder.WriteString(fmt.Sprintf("validation failed with %d errors: ", len(e.results)))
	for i, r := range e.results {
		if i > 0 {
			builder.WriteString("; ")
		}
		builder.WriteString(r.Error())
	}
	return builder.String()
}

// Unwrap 支持 errors.Is / errors.As 遍历单条结果
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.results))
	for i, r := range e.results {
		errs[i] = r
	}
	return errs
}
