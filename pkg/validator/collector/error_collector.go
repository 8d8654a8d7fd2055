package collector

import "katydid-common-validator/pkg/validator/core"

// ErrorCollector 单次验证的错误收集器
// 职责：按执行顺序收集失败结果
//
// 每次验证调用独占一个收集器，因此不加锁。
type ErrorCollector struct {
	results []*core.ValidationResult
}

// NewErrorCollector 创建错误收集器
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		results: make([]*core.ValidationResult, 0, 4),
	}
}

// Add 添加错误，nil 被忽略；返回是否实际添加
func (c *ErrorCollector) Add(result *core.ValidationResult) bool {
	if result == nil {
		return false
	}
	c.results = append(c.results, result)
	return true
}

// AddAll 批量添加错误，跳过 nil
func (c *ErrorCollector) AddAll(results []*core.ValidationResult) {
	for _, r := range results {
		c.Add(r)
	}
}

// GetAll 获取所有错误（副本）
func (c *ErrorCollector) GetAll() []*core.ValidationResult {
	out := make([]*core.ValidationResult, len(c.results))
	copy(out, c.results)
	return out
}

// HasErrors 是否有错误
func (c *ErrorCollector) HasErrors() bool {
	return len(c.results) > 0
}

// Count 错误数量
func (c *ErrorCollector) Count() int {
	return len(c.results)
}

// Clear 清空错误
func (c *ErrorCollector) Clear() {
	c.results = c.results[:0]
}

// Summary 构建验证报告
func (c *ErrorCollector) Summary() *core.ValidationSummary {
	return core.NewValidationSummary(c.GetAll())
}
