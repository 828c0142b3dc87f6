// Package option holds the name/value pair used to pass optional
// arguments to constructors in this module.
package option

// Interface is what every exported Option type in this module
// resolves to. Constructors switch on Name() and type-assert Get().
type Interface interface {
	Name() string
	Get() any
}

// Value is the only implementation of Interface
type Value struct {
	name  string
	value any
}

// NewValue creates a named option
func NewValue(name string, value any) *Value {
	return &Value{
		name:  name,
		value: value,
	}
}

func (v *Value) Name() string {
	return v.name
}

func (v *Value) Get() any {
	return v.value
}
