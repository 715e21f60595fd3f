package tool

import (
	"context"
	"math"
	"testing"
)

func TestCalculator_Call(t *testing.T) {
	ctx := context.Background()
	calc := NewCalculator()

	tests := []struct {
		name  string
		input map[string]interface{}
		want  float64
	}{
		{"add", map[string]interface{}{"op": "add", "a": 2.0, "b": 3.0}, 5},
		{"sub", map[string]interface{}{"op": "sub", "a": 10.0, "b": 4.0}, 6},
		{"mul", map[string]interface{}{"op": "mul", "a": 6.0, "b": 7.0}, 42},
		{"div", map[string]interface{}{"op": "div", "a": 9.0, "b": 2.0}, 4.5},
		{"pow", map[string]interface{}{"op": "pow", "a": 2.0, "b": 10.0}, 1024},
		{"sqrt", map[string]interface{}{"op": "sqrt", "a": 144.0}, 12},
		{"int inputs", map[string]interface{}{"op": "add", "a": 2, "b": 3}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := calc.Call(ctx, tt.input)
			if err != nil {
				t.Fatalf("Call failed: %v", err)
			}
			got, ok := out["result"].(float64)
			if !ok {
				t.Fatalf("expected float64 result, got %T", out["result"])
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCalculator_Errors(t *testing.T) {
	ctx := context.Background()
	calc := NewCalculator()

	tests := []struct {
		name  string
		input map[string]interface{}
	}{
		{"missing op", map[string]interface{}{"a": 1.0, "b": 2.0}},
		{"unsupported op", map[string]interface{}{"op": "mod", "a": 1.0, "b": 2.0}},
		{"missing operand", map[string]interface{}{"op": "add", "a": 1.0}},
		{"non-numeric operand", map[string]interface{}{"op": "add", "a": "one", "b": 2.0}},
		{"division by zero", map[string]interface{}{"op": "div", "a": 1.0, "b": 0.0}},
		{"negative sqrt", map[string]interface{}{"op": "sqrt", "a": -4.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := calc.Call(ctx, tt.input); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
