package evaluator

import (
	"sort"
	"strings"

	"github.com/funvibe/funcalc/internal/config"
	"github.com/funvibe/funcalc/internal/modules"
)

var keywords = []string{
	config.KeywordIf, config.KeywordElse, config.KeywordFor, config.KeywordForeach,
	config.KeywordIn, config.KeywordWhile, config.KeywordNamespace, config.KeywordBreak,
	config.KeywordReturn, config.TypeOfName, config.StringName,
}

// Completions lists the names resolvable at the top level that start with
// prefix: declared names, names of used namespaces and modules, session
// commands and keywords. The result is sorted and has no duplicates.
func (in *Interpreter) Completions(prefix string) []string {
	seen := make(map[string]bool)
	add := func(name string) {
		if name != "" && strings.HasPrefix(name, prefix) {
			seen[name] = true
		}
	}
	addFields := func(d *modules.Definition) {
		for _, f := range d.Fields {
			add(f.Name)
		}
	}

	for _, f := range in.frames {
		addFields(f.Space)
		for _, u := range f.Using {
			addFields(u)
		}
	}
	add(in.math.Name())
	addFields(in.math.Def)
	for _, m := range in.installed {
		add(m.Name())
	}
	for _, cmd := range sessionCommands {
		add(cmd.name)
	}
	for _, kw := range keywords {
		add(kw)
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
