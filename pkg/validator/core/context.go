package core

import "reflect"

// ValidationContext 验证上下文
// 职责：携带被验证的对象、当前成员名以及调用方提供的上下文数据
//
// 子上下文（ForMember）与父上下文共享同一个 items 映射，不做复制。
// 上下文只在单次 Validate 调用内使用，不跨调用共享。
type ValidationContext struct {
	instance   any
	objectType reflect.Type
	memberName string
	items      map[string]any
}

// NewValidationContext 创建顶层验证上下文
// items 为 nil 时会创建一个空映射，保证之后派生的子上下文共享同一个映射
func NewValidationContext(instance any, items map[string]any) *ValidationContext {
	if items == nil {
		items = make(map[string]any)
	}
	return &ValidationContext{
		instance:   instance,
		objectType: reflect.TypeOf(instance),
		items:      items,
	}
}

// ForMember 派生成员级子上下文
func (c *ValidationContext) ForMember(name string) *ValidationContext {
	return &ValidationContext{
		instance:   c.instance,
		objectType: c.objectType,
		memberName: name,
		items:      c.items,
	}
}

// Instance 被验证的对象
func (c *ValidationContext) Instance() any {
	return c.instance
}

// ObjectType 被验证对象的运行时类型
func (c *ValidationContext) ObjectType() reflect.Type {
	return c.objectType
}

// MemberName 当前成员名，验证整个对象时为空
func (c *ValidationContext) MemberName() string {
	return c.memberName
}

// Items 共享的上下文数据
func (c *ValidationContext) Items() map[string]any {
	return c.items
}

// Get 获取上下文值
func (c *ValidationContext) Get(key string) (any, bool) {
	val, ok := c.items[key]
	return val, ok
}

// Set 设置上下文值，对父子上下文均可见
func (c *ValidationContext) Set(key string, value any) {
	c.items[key] = value
}
