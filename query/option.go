package query

import (
	"fmt"
	"reflect"
	"sort"
)

// OptionMode selects how Option combines with previously set options.
type OptionMode int

const (
	// OptionsMerge adds new options and overwrites existing ones in place.
	OptionsMerge OptionMode = iota

	// OptionsSet discards every previously set option first.
	OptionsSet
)

// OptionValue is one entry of the OPTION clause. Value is a scalar or an
// Expr, which is emitted verbatim.
type OptionValue struct {
	Name  string
	Value any
}

// Options is an ordered OPTION list.
type Options []OptionValue

// Get returns the value of the named option.
func (o Options) Get(name string) (any, bool) {
	for _, opt := range o {
		if opt.Name == name {
			return opt.Value, true
		}
	}
	return nil, false
}

func (o Options) merge(in Options) Options {
	out := append(Options(nil), o...)
next:
	for _, opt := range in {
		for i := range out {
			if out[i].Name == opt.Name {
				out[i].Value = opt.Value
				continue next
			}
		}
		out = append(out, opt)
	}
	return out
}

func lowerOptions(op string, opts any) (Options, error) {
	var out Options
	switch v := opts.(type) {
	case nil:
	case OptionValue:
		out = Options{v}
	case Options:
		out = append(out, v...)
	case []OptionValue:
		out = append(out, v...)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, OptionValue{Name: k, Value: v[k]})
		}
	default:
		rv := reflect.ValueOf(opts)
		if rv.Kind() != reflect.Map {
			return nil, invalidArgument(op, "options must be Options or a map, got %T", opts)
		}
		if rv.Type().Key().Kind() != reflect.String {
			return nil, invalidArgument(op, "option names must be strings, got %s keys", rv.Type().Key())
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		for _, k := range keys {
			out = append(out, OptionValue{Name: k.String(), Value: rv.MapIndex(k).Interface()})
		}
	}
	if len(out) == 0 {
		return nil, invalidArgument(op, "option set must not be empty")
	}
	for _, opt := range out {
		if opt.Name == "" {
			return nil, invalidArgument(op, "option name must not be empty")
		}
	}
	return out, nil
}

func (m OptionMode) String() string {
	switch m {
	case OptionsMerge:
		return "merge"
	case OptionsSet:
		return "set"
	}
	return fmt.Sprintf("OptionMode(%d)", int(m))
}
