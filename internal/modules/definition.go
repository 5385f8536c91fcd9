package modules

import (
	"context"

	"github.com/funvibe/funcalc/internal/diagnostics"
	"github.com/funvibe/funcalc/internal/value"
)

type Kind int

const (
	KindNamespace Kind = iota
	KindModule
	KindFunction
	KindVariable
	KindClass
	KindEnum
	KindEnumValue
	KindOperator
)

var kindNames = [...]string{
	KindNamespace: "namespace",
	KindModule:    "module",
	KindFunction:  "function",
	KindVariable:  "variable",
	KindClass:     "class",
	KindEnum:      "enum",
	KindEnumValue: "enum value",
	KindOperator:  "operator",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Status is the outcome of a host function call.
type Status int

const (
	StatusOk      Status = 0
	StatusWarning Status = -1
	StatusFail    Status = 1
)

// CallContext is attached to every function invocation.
type CallContext struct {
	Context  context.Context
	Settings value.EvalSettings
	// Host is whatever the interpreter's context builder returned,
	// for example the active document.
	Host any
}

// Function is the invocation entry point of a function definition.
// Failures and warnings are reported through log.
type Function func(ctx *CallContext, args Args, log *diagnostics.Log) (value.Value, Status)

// Param describes one declared function parameter.
type Param struct {
	Name        string
	Type        string
	Description string
	// Default fills the parameter when the caller omits it.
	Default value.Value
	// Enum, when set, lets callers pass a bare member name.
	Enum *Definition
}

// Definition is one named entry of a module or namespace.
type Definition struct {
	Name        string
	Description string
	Kind        Kind

	// Fields holds namespace and module members, class fields and enum
	// members, in declaration order.
	Fields []*Definition

	// Params and Call are set for functions.
	Params []Param
	Call   Function

	// Value is the current value of a variable. Type, when set, is the
	// declared type the value is coerced to.
	Value    value.Value
	Type     string
	ReadOnly bool

	// Index is the position of an enum value in its enum.
	Index int
}

func NewNamespace(name, desc string) *Definition {
	return &Definition{Name: name, Description: desc, Kind: KindNamespace}
}

// IsNamespace reports whether d can hold members that are reached with a dot.
func (d *Definition) IsNamespace() bool {
	return d.Kind == KindNamespace || d.Kind == KindModule
}

// Find returns the member called name.
func (d *Definition) Find(name string) *Definition {
	for _, f := range d.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Set adds f, replacing a member of the same name.
func (d *Definition) Set(f *Definition) {
	for i, old := range d.Fields {
		if old.Name == f.Name {
			d.Fields[i] = f
			return
		}
	}
	d.Fields = append(d.Fields, f)
}

// Remove deletes the member called name and reports whether it existed.
func (d *Definition) Remove(name string) bool {
	for i, f := range d.Fields {
		if f.Name == name {
			d.Fields = append(d.Fields[:i], d.Fields[i+1:]...)
			return true
		}
	}
	return false
}

// EnumIndex returns the index of the member called name in an enum.
func (d *Definition) EnumIndex(name string) (int, bool) {
	for i, f := range d.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}
