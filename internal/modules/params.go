package modules

import (
	"fmt"
	"strings"

	"github.com/funvibe/funcalc/internal/value"
)

// Arg is one call argument. Name is empty for positional arguments.
type Arg struct {
	Name  string
	Value value.Value
}

// Args is a mapped argument list, one entry per declared parameter.
type Args []Arg

// Get returns the argument called name.
func (a Args) Get(name string) (value.Value, bool) {
	for _, arg := range a {
		if arg.Name == name {
			return arg.Value, arg.Value != nil
		}
	}
	return nil, false
}

// At returns argument i, or nil if it is missing.
func (a Args) At(i int) value.Value {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i].Value
}

// Number returns argument i as a float64.
func (a Args) Number(i int) (float64, error) {
	v := a.At(i)
	if v == nil {
		return 0, fmt.Errorf("Missing parameter %s!", a.name(i))
	}
	f, ok := value.Number(v)
	if !ok {
		return 0, fmt.Errorf("Parameter %s must be a number!", a.name(i))
	}
	return f, nil
}

// Int returns argument i as an integer; reals are truncated.
func (a Args) Int(i int) (int64, error) {
	v := a.At(i)
	if n, ok := v.(value.Int); ok {
		return int64(n), nil
	}
	f, err := a.Number(i)
	return int64(f), err
}

func (a Args) String(i int) (string, error) {
	switch s := a.At(i).(type) {
	case value.String:
		return string(s), nil
	case nil:
		return "", fmt.Errorf("Missing parameter %s!", a.name(i))
	}
	return "", fmt.Errorf("Parameter %s must be a string!", a.name(i))
}

func (a Args) name(i int) string {
	if i >= 0 && i < len(a) && a[i].Name != "" {
		return a[i].Name
	}
	return fmt.Sprintf("%d", i+1)
}

// MapParameters lines args up with params. Named arguments go to the
// parameter of that name; positional arguments fill the remaining
// parameters in order; missing parameters take their default or stay nil.
// Arguments that match nothing make the call fail.
func MapParameters(params []Param, args []Arg) (Args, error) {
	used := make([]bool, len(args))
	out := make(Args, len(params))

	for i, p := range params {
		found := -1
		for j, a := range args {
			if !used[j] && a.Name == p.Name {
				found = j
				break
			}
		}
		if found < 0 {
			for j, a := range args {
				if !used[j] && a.Name == "" {
					found = j
					break
				}
			}
		}
		out[i].Name = p.Name
		if found < 0 {
			out[i].Value = p.Default
			continue
		}
		used[found] = true
		out[i].Value = args[found].Value
	}

	var extra []string
	for j, a := range args {
		if used[j] {
			continue
		}
		if a.Name != "" {
			extra = append(extra, a.Name)
		} else {
			extra = append(extra, fmt.Sprintf("#%d", j+1))
		}
	}
	if len(extra) > 0 {
		return nil, fmt.Errorf("Unknown or extra parameters: %s", strings.Join(extra, ", "))
	}
	return out, nil
}

// PositionalFor returns the parameter the next positional argument will
// bind to, given the arguments parsed so far, or nil.
func PositionalFor(params []Param, parsed []Arg) *Param {
	named := make(map[string]bool)
	positional := 0
	for _, a := range parsed {
		if a.Name != "" {
			named[a.Name] = true
		} else {
			positional++
		}
	}
	for i := range params {
		if named[params[i].Name] {
			continue
		}
		if positional == 0 {
			return &params[i]
		}
		positional--
	}
	return nil
}
