package formatter

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"katydid-common-validator/pkg/validator/core"
)

// Formatter 验证报告格式化器
type Formatter interface {
	// Format 格式化单个错误
	Format(result *core.ValidationResult) string

	// FormatSummary 格式化完整报告
	FormatSummary(summary *core.ValidationSummary) string
}

// ============================================================================
// 文本格式
// ============================================================================

// TextFormatter 文本格式化器
type TextFormatter struct{}

// NewTextFormatter 创建文本格式化器
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Format 格式化单个错误
func (f *TextFormatter) Format(result *core.ValidationResult) string {
	if result == nil {
		return ""
	}

	// 优先使用规则给出的消息
	if result.Message != "" {
		return result.Message
	}

	var builder strings.Builder
	builder.Grow(80)

	if len(result.MemberNames) > 0 {
		builder.WriteString("字段 '")
		builder.WriteString(strings.Join(result.MemberNames, ", "))
		builder.WriteString("' ")
	}

	builder.WriteString("验证失败")

	if result.Tag != "" {
		builder.WriteString("，规则: ")
		builder.WriteString(result.Tag)
	}

	if result.Param != "" {
		builder.WriteString("，参数: ")
		builder.WriteString(result.Param)
	}

	return builder.String()
}

// FormatSummary 格式化完整报告
func (f *TextFormatter) FormatSummary(summary *core.ValidationSummary) string {
	if summary == nil || len(summary.Results) == 0 {
		return "验证通过"
	}

	if len(summary.Results) == 1 {
		return f.Format(summary.Results[0])
	}

	var builder strings.Builder
	builder.Grow(len(summary.Results) * 80)

	builder.WriteString(fmt.Sprintf("验证失败，共 %d 个错误:\n", len(summary.Results)))
	for i, r := range summary.Results {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, f.Format(r)))
	}

	return builder.String()
}

// ============================================================================
// 结构化编码
// ============================================================================

// Encoder 报告编码器
type Encoder interface {
	Encode(summary *core.ValidationSummary) ([]byte, error)
	ContentType() string
}

// JSONEncoder JSON 编码器
type JSONEncoder struct {
	Indent bool
}

// Encode 编码报告
func (e JSONEncoder) Encode(summary *core.ValidationSummary) ([]byte, error) {
	summary = normalize(summary)
	if e.Indent {
		return json.MarshalIndent(summary, "", "  ")
	}
	return json.Marshal(summary)
}

// ContentType 内容类型
func (e JSONEncoder) ContentType() string {
	return "application/json"
}

// YAMLEncoder YAML 编码器
type YAMLEncoder struct{}

// Encode 编码报告
func (e YAMLEncoder) Encode(summary *core.ValidationSummary) ([]byte, error) {
	return yaml.Marshal(normalize(summary))
}

// ContentType 内容类型
func (e YAMLEncoder) ContentType() string {
	return "application/yaml"
}

// DecodeJSON 解码 JSON 格式的报告
func DecodeJSON(data []byte) (*core.ValidationSummary, error) {
	summary := &core.ValidationSummary{}
	if err := json.Unmarshal(data, summary); err != nil {
		return nil, fmt.Errorf("decode validation summary: %w", err)
	}
	summary.Success = len(summary.Results) == 0
	return summary, nil
}

// normalize nil 报告视为成功
func normalize(summary *core.ValidationSummary) *core.ValidationSummary {
	if summary == nil {
		return core.NewValidationSummary(nil)
	}
	return summary
}
