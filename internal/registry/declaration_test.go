package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestClassifyShapes(t *testing.T) {
	tests := []struct {
		name  string
		raw   any
		shape Shape
		count int
	}{
		{"nil", nil, ShapeAbsent, 0},
		{"string", "new Foo()", ShapeBareExpression, 1},
		{"list of strings", []any{"new Foo()", "new Bar()"}, ShapeExpressionList, 2},
		{"typed list of strings", []string{"new Foo()"}, ShapeExpressionList, 1},
		{"descriptor", map[string]any{"module": "new Foo()", "priority": 3}, ShapeDescriptor, 1},
		{"list of descriptors", []any{
			map[string]any{"module": "new Foo()"},
			map[string]any{"module": "new Bar()"},
		}, ShapeDescriptorList, 2},
		{"mixed list", []any{"new Foo()", map[string]any{"module": "new Bar()"}}, ShapeDescriptorList, 2},
		{"empty list", []any{}, ShapeExpressionList, 0},
		{"empty map", map[string]any{}, ShapeExpressionList, 0},
		{"index keyed map", map[string]any{"1": "second", "0": "first"}, ShapeExpressionList, 2},
		{"sparse index keyed map", map[string]any{"0": "a", "2": "b"}, ShapeDescriptor, 1},
		{"number", 42, ShapeBareExpression, 1},
		{"bool", true, ShapeBareExpression, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(tt.raw)
			if d.Shape != tt.shape {
				t.Errorf("Shape = %v, want %v", d.Shape, tt.shape)
			}
			if len(d.Entries) != tt.count {
				t.Errorf("got %d entries, want %d", len(d.Entries), tt.count)
			}
		})
	}
}

func TestClassifyIndexKeyedMapKeepsIndexOrder(t *testing.T) {
	d := Classify(map[string]any{"1": "second", "0": "first"})
	want := []Entry{{Module: "first"}, {Module: "second"}}
	if diff := cmp.Diff(want, d.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyYAMLStyleMap(t *testing.T) {
	d := Classify(map[any]any{0: "first", 1: "second"})
	if d.Shape != ShapeExpressionList {
		t.Fatalf("Shape = %v, want %v", d.Shape, ShapeExpressionList)
	}
	if d.Entries[1].Module != "second" {
		t.Errorf("Entries[1].Module = %q, want %q", d.Entries[1].Module, "second")
	}
}

func TestClassifyDescriptorFields(t *testing.T) {
	d := Classify(map[string]any{
		"name":        "cache",
		"description": "Cache module",
		"module":      "new CacheModule()",
		"priority":    10,
		"enabled":     true,
	})
	want := []Entry{{
		Name:        strPtr("cache"),
		Description: strPtr("Cache module"),
		Module:      "new CacheModule()",
		Priority:    intPtr(10),
	}}
	if diff := cmp.Diff(want, d.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if len(d.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", d.Warnings)
	}
}

func TestClassifyWeakPriority(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want *int
	}{
		{"string number", "10", intPtr(10)},
		{"float", 2.0, intPtr(2)},
		{"negative", -5, intPtr(-5)},
		{"garbage", "high", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(map[string]any{"module": "x", "priority": tt.raw})
			if diff := cmp.Diff(tt.want, d.Entries[0].Priority); diff != "" {
				t.Errorf("priority mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassifyBadPriorityKeepsName(t *testing.T) {
	d := Classify(map[string]any{"name": "n", "module": "x", "priority": "high"})
	if d.Entries[0].Name == nil || *d.Entries[0].Name != "n" {
		t.Errorf("Name = %v, want n", d.Entries[0].Name)
	}
	if len(d.Warnings) == 0 {
		t.Error("expected a warning for the undecodable priority")
	}
}

func TestClassifyCoercionWarnings(t *testing.T) {
	d := Classify(42)
	if d.Entries[0].Module != "42" {
		t.Errorf("Module = %q, want %q", d.Entries[0].Module, "42")
	}
	if len(d.Warnings) != 1 {
		t.Errorf("got %d warnings, want 1", len(d.Warnings))
	}

	d = Classify("new Foo()")
	if len(d.Warnings) != 0 {
		t.Errorf("plain expression should not warn: %v", d.Warnings)
	}
}

func TestShapeString(t *testing.T) {
	if ShapeDescriptorList.String() != "descriptor list" {
		t.Errorf("String() = %q", ShapeDescriptorList.String())
	}
	if Shape(99).String() != "unknown" {
		t.Errorf("String() = %q", Shape(99).String())
	}
}
