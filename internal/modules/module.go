package modules

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/funvibe/funcalc/internal/operators"
	"github.com/funvibe/funcalc/internal/value"
)

// OperatorSpec is an operator a module contributes when it is installed.
type OperatorSpec struct {
	Token       string
	Assoc       operators.Assoc
	Rank        int
	Description string
	Eval        operators.Evaluator
	LValue      bool
}

// Module is a named collection of definitions and operators supplied by
// the host. Its ID owns the operators it registers, so removing the module
// removes exactly those operators.
type Module struct {
	ID        string
	Def       *Definition
	Operators []OperatorSpec
}

func NewModule(name, desc string) *Module {
	return &Module{
		ID:  uuid.NewString(),
		Def: &Definition{Name: name, Description: desc, Kind: KindModule},
	}
}

func (m *Module) Name() string { return m.Def.Name }

func (m *Module) Find(name string) *Definition { return m.Def.Find(name) }

// Add appends d to the module's top-level definitions.
func (m *Module) Add(d *Definition) *Definition {
	m.Def.Set(d)
	return d
}

func (m *Module) AddFunction(name, desc string, params []Param, fn Function) *Definition {
	return m.Add(&Definition{Name: name, Description: desc, Kind: KindFunction, Params: params, Call: fn})
}

// AddConstant adds a read-only variable.
func (m *Module) AddConstant(name, desc string, v value.Value) *Definition {
	return m.Add(&Definition{Name: name, Description: desc, Kind: KindVariable, Value: v, ReadOnly: true})
}

func (m *Module) AddVariable(name, desc string, v value.Value) *Definition {
	return m.Add(&Definition{Name: name, Description: desc, Kind: KindVariable, Value: v})
}

func (m *Module) AddNamespace(name, desc string) *Definition {
	return m.Add(NewNamespace(name, desc))
}

// AddEnum adds an enum whose members get indexes in the given order.
func (m *Module) AddEnum(name, desc string, members ...string) *Definition {
	enum := &Definition{Name: name, Description: desc, Kind: KindEnum}
	for i, member := range members {
		enum.Fields = append(enum.Fields, &Definition{Name: member, Kind: KindEnumValue, Index: i})
	}
	return m.Add(enum)
}

func (m *Module) AddOperator(spec OperatorSpec) {
	m.Operators = append(m.Operators, spec)
}

// Entries converts the module's operators into table entries owned by m.
func (m *Module) Entries() []*operators.Entry {
	out := make([]*operators.Entry, len(m.Operators))
	for i, spec := range m.Operators {
		out[i] = &operators.Entry{
			Token:       spec.Token,
			Assoc:       spec.Assoc,
			Owner:       m.ID,
			Description: spec.Description,
			Eval:        spec.Eval,
			LValue:      spec.LValue,
		}
	}
	return out
}

// Install registers the module's operators in t.
func (m *Module) Install(t *operators.Table) error {
	for i, e := range m.Entries() {
		if err := t.Register(e, m.Operators[i].Rank); err != nil {
			t.RemoveOwner(m.ID)
			return fmt.Errorf("module %s: %w", m.Name(), err)
		}
	}
	return nil
}
