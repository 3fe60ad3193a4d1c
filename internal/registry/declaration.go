package registry

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// Shape identifies which of the accepted forms a factory declaration takes.
type Shape int

const (
	// ShapeAbsent means the package declares no factories.
	ShapeAbsent Shape = iota
	// ShapeBareExpression is a single code expression.
	ShapeBareExpression
	// ShapeExpressionList is an ordered list of code expressions.
	ShapeExpressionList
	// ShapeDescriptor is a single {name, description, module, priority} map.
	ShapeDescriptor
	// ShapeDescriptorList is an ordered list of descriptor maps.
	ShapeDescriptorList
)

// String returns a human-readable name for the shape.
func (s Shape) String() string {
	switch s {
	case ShapeAbsent:
		return "absent"
	case ShapeBareExpression:
		return "expression"
	case ShapeExpressionList:
		return "expression list"
	case ShapeDescriptor:
		return "descriptor"
	case ShapeDescriptorList:
		return "descriptor list"
	default:
		return "unknown"
	}
}

// Entry is one factory declaration in descriptor form. Nil fields were not
// authored and receive defaults during aggregation.
type Entry struct {
	Name        *string `mapstructure:"name"`
	Description *string `mapstructure:"description"`
	Module      string  `mapstructure:"module"`
	Priority    *int    `mapstructure:"priority"`
}

// Declaration is a classified factory declaration.
type Declaration struct {
	Shape   Shape
	Entries []Entry

	// Warnings lists values that had to be coerced during classification.
	Warnings []string
}

// Classify decides which shape a raw declaration value takes and converts it
// to descriptor entries. Precedence:
//
//  1. nil is absent.
//  2. A string is a bare expression.
//  3. A list, an empty map, or a map whose keys are exactly "0".."n-1", is a
//     sequence. A non-empty sequence holding at least one map is a descriptor
//     list (its scalar elements become bare entries); any other sequence is
//     an expression list, possibly empty.
//  4. Any other map is a descriptor.
//  5. Any other scalar is a bare expression of its string form.
//
// Every shape but one yields at least one entry. The exception is an empty
// list or empty map: it classifies as ShapeExpressionList with no entries and
// so contributes no records, exactly like an absent declaration.
func Classify(raw any) Declaration {
	if raw == nil {
		return Declaration{Shape: ShapeAbsent}
	}
	if s, ok := raw.(string); ok {
		return Declaration{Shape: ShapeBareExpression, Entries: []Entry{{Module: s}}}
	}

	if items, ok := asSequence(raw); ok {
		d := Declaration{Shape: ShapeExpressionList}
		if slices.ContainsFunc(items, isMap) {
			d.Shape = ShapeDescriptorList
		}
		for i, item := range items {
			entry, warn := toEntry(item)
			if warn != "" {
				d.Warnings = append(d.Warnings, fmt.Sprintf("entry %d: %s", i, warn))
			}
			d.Entries = append(d.Entries, entry)
		}
		return d
	}

	entry, warn := toEntry(raw)
	d := Declaration{Shape: ShapeBareExpression, Entries: []Entry{entry}}
	if isMap(raw) {
		d.Shape = ShapeDescriptor
	}
	if warn != "" {
		d.Warnings = append(d.Warnings, warn)
	}
	return d
}

// asSequence returns the elements of raw when it is a list or a map keyed by
// a contiguous zero-based integer range.
func asSequence(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return items, true
	}

	m, ok := toStringMap(raw)
	if !ok {
		return nil, false
	}
	if len(m) == 0 {
		// An empty map has no named keys, so it is an empty list.
		return nil, true
	}
	items := make([]any, len(m))
	for i := range items {
		item, ok := m[strconv.Itoa(i)]
		if !ok {
			return nil, false
		}
		items[i] = item
	}
	return items, true
}

// toEntry converts a single element into an Entry. Maps are decoded as
// descriptors; anything else becomes the module expression.
func toEntry(item any) (Entry, string) {
	m, ok := toStringMap(item)
	if !ok {
		module, err := cast.ToStringE(item)
		if err != nil {
			return Entry{Module: fmt.Sprint(item)}, fmt.Sprintf("coerced %T to expression", item)
		}
		if _, isString := item.(string); !isString {
			return Entry{Module: module}, fmt.Sprintf("coerced %T to expression", item)
		}
		return Entry{Module: module}, ""
	}

	var entry Entry
	var warn string
	if mod, ok := m["module"]; ok && mod != nil {
		module, err := cast.ToStringE(mod)
		if err != nil {
			warn = fmt.Sprintf("module of type %T is not an expression", mod)
		}
		entry.Module = module
	}
	// module was handled above; decode the remaining fields weakly so that
	// priority "10" and numeric names are accepted.
	fields := make(map[string]any, len(m))
	for k, v := range m {
		if k != "module" {
			fields[k] = v
		}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &entry,
	})
	if err == nil {
		err = dec.Decode(fields)
	}
	if err != nil {
		// Keep whatever decoded cleanly; a bad priority falls back to the default.
		entry.Priority = nil
		if n, ok := fields["name"]; ok && entry.Name == nil {
			if s, err := cast.ToStringE(n); err == nil {
				entry.Name = &s
			}
		}
		if warn == "" {
			warn = fmt.Sprintf("descriptor: %v", err)
		}
	}
	return entry, warn
}

func isMap(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Kind() == reflect.Map
}

// toStringMap returns v as a map keyed by strings. YAML decoding may produce
// map[any]any for non-string keys, so keys are stringified.
func toStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	if !isMap(v) {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
	}
	return out, true
}
