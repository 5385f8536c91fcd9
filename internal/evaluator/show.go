package evaluator

import (
	"fmt"
	"strings"

	"github.com/funvibe/funcalc/internal/diagnostics"
	"github.com/funvibe/funcalc/internal/modules"
	"github.com/funvibe/funcalc/internal/value"
)

// showCommand prints a summary of the session, or a description of the
// named definition.
func (in *Interpreter) showCommand() error {
	c := in.cur
	c.SkipWhitespace()
	if c.ReadName() == "" {
		in.message(in.summary())
		return nil
	}
	at := c.Mark()
	name, err := in.nameArg()
	if err != nil {
		return err
	}
	d := in.lookupPath(strings.Split(name, "."))
	if d == nil {
		return in.errorAt(at, diagnostics.ErrS001, "Unknown name!")
	}
	in.message(in.describe(d))
	return nil
}

func (in *Interpreter) summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", in.version)

	names := []string{in.math.Name()}
	for _, m := range in.installed {
		names = append(names, m.Name())
	}
	fmt.Fprintf(&sb, "Modules: %s\n", strings.Join(names, ", "))

	for i, f := range in.frames {
		fmt.Fprintf(&sb, "Scope %d: %s", i, f.Kind)
		if len(f.Using) > 0 {
			var used []string
			for _, u := range f.Using {
				used = append(used, u.Name)
			}
			fmt.Fprintf(&sb, ", using %s", strings.Join(used, ", "))
		}
		sb.WriteByte('\n')
		for _, d := range f.Space.Fields {
			fmt.Fprintf(&sb, "  %s: %s\n", d.Name, d.Kind)
		}
	}
	if ops := in.session.Operators; len(ops) > 0 {
		var toks []string
		for _, op := range ops {
			toks = append(toks, op.Token)
		}
		fmt.Fprintf(&sb, "Operators: %s\n", strings.Join(toks, " "))
	}
	if in.settings.Degrees {
		sb.WriteString("Angles: degrees")
	} else {
		sb.WriteString("Angles: radians")
	}
	return sb.String()
}

func (in *Interpreter) describe(d *modules.Definition) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", d.Name, d.Kind)
	if d.Description != "" {
		fmt.Fprintf(&sb, "\n  %s", d.Description)
	}

	switch d.Kind {
	case modules.KindFunction:
		fmt.Fprintf(&sb, "\n  %s(%s)", d.Name, signature(d.Params))
		for _, p := range d.Params {
			if p.Enum != nil {
				fmt.Fprintf(&sb, "\n  %s: %s", p.Name, enumMembers(p.Enum))
			}
		}
		if s, ok := in.scripts[d]; ok && s.expr {
			fmt.Fprintf(&sb, " = %s", strings.TrimSpace(s.body))
		}
	case modules.KindVariable:
		if d.Type != "" {
			fmt.Fprintf(&sb, "\n  type %s", d.Type)
		}
		if d.Value != nil {
			fmt.Fprintf(&sb, "\n  = %s", in.format(d.Value))
		}
	case modules.KindEnum:
		fmt.Fprintf(&sb, "\n  %s", enumMembers(d))
	case modules.KindEnumValue:
		fmt.Fprintf(&sb, "\n  = %d", d.Index)
	case modules.KindNamespace, modules.KindModule, modules.KindClass:
		for _, f := range d.Fields {
			fmt.Fprintf(&sb, "\n  %s: %s", f.Name, f.Kind)
		}
	}
	return sb.String()
}

func signature(params []modules.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		s := p.Name
		if p.Type != "" {
			s = p.Type + " " + s
		}
		if p.Default != nil {
			s += " = " + value.Format(p.Default, 10)
		}
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}

func enumMembers(d *modules.Definition) string {
	parts := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		parts[i] = fmt.Sprintf("%s=%d", f.Name, i)
	}
	return strings.Join(parts, ", ")
}
