package introspect_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katydid-common-validator/pkg/validator/core"
	"katydid-common-validator/pkg/validator/introspect"
	"katydid-common-validator/pkg/validator/rules"
)

var sharedAddressRule = rules.Func("address_complete", func(value any, _ *core.ValidationContext) bool {
	addr, ok := value.(Address)
	return ok && addr.City != ""
}, "address is incomplete")

type Address struct {
	City string `validate:"required"`
}

func (Address) TypeRules() []core.Rule {
	return []core.Rule{sharedAddressRule}
}

type Audit struct {
	CreatedBy string `validate:"required"`
}

type Order struct {
	Audit
	ID       string   `json:"id" validate:"required,min=3,max=20"`
	Email    string   `json:"email,omitempty" validate:"omitempty,email"`
	Tags     []string `json:"tags" validate:"dive,min=2"`
	Shipping Address  `json:"shipping"`
	Internal string   `validate:"-"`
	Note     string
	secret   string `validate:"required"`
}

func TestReflectInspector_Describe(t *testing.T) {
	inspector := introspect.NewReflectInspector()

	desc, err := inspector.Describe(reflect.TypeOf(&Order{}))
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(Order{}), desc.Type, "指针类型解引用")

	fields := make(map[string]core.FieldDescriptor)
	for _, fd := range desc.Fields {
		fields[fd.Name] = fd
	}

	assert.Contains(t, fields, "CreatedBy", "嵌入字段被提升")
	assert.NotContains(t, fields, "Audit")
	assert.NotContains(t, fields, "Internal")
	assert.NotContains(t, fields, "secret")

	id := fields["ID"]
	require.Len(t, id.Rules, 3)
	assert.True(t, core.IsRequired(id.Rules[0]))
	assert.Equal(t, "min=3", id.Rules[1].(*rules.TagRule).Expression())
	assert.Equal(t, "max=20", id.Rules[2].(*rules.TagRule).Expression())

	email := fields["Email"]
	require.Len(t, email.Rules, 1)
	assert.Equal(t, "omitempty,email", email.Rules[0].(*rules.TagRule).Expression())

	tags := fields["Tags"]
	require.Len(t, tags.Rules, 1)
	assert.Equal(t, "dive,min=2", tags.Rules[0].(*rules.TagRule).Expression())

	assert.Empty(t, fields["Note"].Rules)
}

func TestReflectInspector_TypeRuleProvider(t *testing.T) {
	inspector := introspect.NewReflectInspector()

	desc, err := inspector.Describe(reflect.TypeOf(Order{}))
	require.NoError(t, err)

	var shipping core.FieldDescriptor
	for _, fd := range desc.Fields {
		if fd.Name == "Shipping" {
			shipping = fd
		}
	}
	require.Len(t, shipping.TypeRules, 1)
	assert.Same(t, sharedAddressRule, shipping.TypeRules[0])
	require.Len(t, shipping.Rules, 1)
	assert.Same(t, sharedAddressRule, shipping.Rules[0], "类型规则同时出现在字段规则中")

	addrDesc, err := inspector.Describe(reflect.TypeOf(Address{}))
	require.NoError(t, err)
	require.Len(t, addrDesc.Rules, 1)
	assert.Same(t, sharedAddressRule, addrDesc.Rules[0])
}

func TestReflectInspector_RegisterTypeRules(t *testing.T) {
	inspector := introspect.NewReflectInspector()
	extra := rules.Func("order_consistent", nil, "")
	inspector.RegisterTypeRules(reflect.TypeOf(&Order{}), extra)

	desc, err := inspector.Describe(reflect.TypeOf(Order{}))
	require.NoError(t, err)
	require.Len(t, desc.Rules, 1)
	assert.Same(t, extra, desc.Rules[0])
}

func TestReflectInspector_Accessor(t *testing.T) {
	inspector := introspect.NewReflectInspector()
	desc, err := inspector.Describe(reflect.TypeOf(Order{}))
	require.NoError(t, err)

	order := Order{Audit: Audit{CreatedBy: "bob"}, ID: "A-001"}
	target := reflect.ValueOf(order)

	values := make(map[string]any)
	for _, fd := range desc.Fields {
		v, ok := fd.Accessor(target)
		require.True(t, ok, fd.Name)
		values[fd.Name] = v
	}
	assert.Equal(t, "bob", values["CreatedBy"])
	assert.Equal(t, "A-001", values["ID"])

	_, ok := desc.Fields[0].Accessor(reflect.ValueOf((*Order)(nil)))
	assert.False(t, ok)
}

func TestReflectInspector_JSONNames(t *testing.T) {
	inspector := introspect.NewReflectInspector(introspect.WithJSONNames())
	desc, err := inspector.Describe(reflect.TypeOf(Order{}))
	require.NoError(t, err)

	names := make([]string, 0, len(desc.Fields))
	for _, fd := range desc.Fields {
		names = append(names, fd.Name)
	}
	assert.Contains(t, names, "id")
	assert.Contains(t, names, "email")
	assert.Contains(t, names, "shipping")
	assert.Contains(t, names, "Note", "无 json 标签时回退到字段名")
}

func TestReflectInspector_CustomTagName(t *testing.T) {
	type login struct {
		User string `binding:"required"`
		Pass string `validate:"required"`
	}

	desc, err := introspect.NewReflectInspector(introspect.WithTagName("binding")).Describe(reflect.TypeOf(login{}))
	require.NoError(t, err)
	require.Len(t, desc.Fields, 2)
	assert.Len(t, desc.Fields[0].Rules, 1)
	assert.Empty(t, desc.Fields[1].Rules)
}

func TestReflectInspector_Errors(t *testing.T) {
	inspector := introspect.NewReflectInspector()

	_, err := inspector.Describe(reflect.TypeOf(42))
	assert.ErrorIs(t, err, core.ErrNotStruct)

	type broken struct {
		Name string `validate:"no_such_rule"`
	}
	_, err = inspector.Describe(reflect.TypeOf(broken{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name")
}

func TestReflectInspector_CrossFieldTags(t *testing.T) {
	inspector := introspect.NewReflectInspector()

	type resetPassword struct {
		Password string `validate:"required"`
		Confirm  string `validate:"eqfield=Password"`
	}
	desc, err := inspector.Describe(reflect.TypeOf(resetPassword{}))
	require.NoError(t, err)
	require.Len(t, desc.Fields, 2)
	require.Len(t, desc.Fields[1].Rules, 1)
	assert.Equal(t, "eqfield=Password", desc.Fields[1].Rules[0].(*rules.TagRule).Expression())

	type badPath struct {
		Password string
		Confirm  string `validate:"eqfield=Password.Hash"`
	}
	_, err = inspector.Describe(reflect.TypeOf(badPath{}))
	require.Error(t, err, "字段路径无法解析时在描述阶段报错")
	assert.Contains(t, err.Error(), "Confirm")
}

func TestRegistry(t *testing.T) {
	registry := introspect.NewRegistry()
	idRule := rules.Required()
	cityRule := rules.Tag("min=2")
	orderRule := rules.Func("order_ok", nil, "")

	introspect.For[Order]().
		TypeRules(orderRule).
		Field("ID", idRule).
		FieldWithTypeRules("Shipping", []core.Rule{sharedAddressRule}, sharedAddressRule, cityRule).
		RegisterTo(registry)

	desc, err := registry.Describe(reflect.TypeOf(&Order{}))
	require.NoError(t, err)
	require.Len(t, desc.Fields, 2)
	assert.Same(t, orderRule, desc.Rules[0])
	assert.Same(t, idRule, desc.Fields[0].Rules[0])
	assert.Equal(t, reflect.TypeOf(Address{}), desc.Fields[1].Type)

	v, ok := desc.Fields[0].Accessor(reflect.ValueOf(Order{ID: "X1"}))
	require.True(t, ok)
	assert.Equal(t, "X1", v)

	_, err = registry.Describe(reflect.TypeOf(Address{}))
	assert.ErrorIs(t, err, introspect.ErrNotRegistered)
}

func TestRegistry_NameAccessorFallback(t *testing.T) {
	registry := introspect.NewRegistry()
	registry.Register(&core.TypeDescriptor{
		Type:   reflect.TypeOf(Address{}),
		Fields: []core.FieldDescriptor{{Name: "City", Rules: []core.Rule{rules.Required()}}},
	})

	desc, err := registry.Describe(reflect.TypeOf(Address{}))
	require.NoError(t, err)
	v, ok := desc.Fields[0].Accessor(reflect.ValueOf(&Address{City: "Paris"}))
	require.True(t, ok)
	assert.Equal(t, "Paris", v)
}
