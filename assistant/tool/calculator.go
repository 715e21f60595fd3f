package tool

import (
	"context"
	"fmt"
	"math"
)

// Calculator is a tool for basic arithmetic.
//
// Input Parameters:
//   - op: Operation name ("add", "sub", "mul", "div", "pow", "sqrt")
//   - a: First operand (number)
//   - b: Second operand (number, unused for "sqrt")
//
// Output:
//   - result: The computed value
type Calculator struct{}

// NewCalculator creates a calculator tool.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Name returns the tool identifier.
func (c *Calculator) Name() string {
	return "calculator"
}

// Description tells the model what the tool does.
func (c *Calculator) Description() string {
	return "Perform arithmetic: add, sub, mul, div, pow, sqrt."
}

// Schema returns the input parameter schema.
func (c *Calculator) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"op": map[string]interface{}{
				"type":        "string",
				"description": "Operation to perform",
				"enum":        []string{"add", "sub", "mul", "div", "pow", "sqrt"},
			},
			"a": map[string]interface{}{
				"type":        "number",
				"description": "First operand",
			},
			"b": map[string]interface{}{
				"type":        "number",
				"description": "Second operand. Ignored for sqrt.",
			},
		},
		"required": []string{"op", "a"},
	}
}

// Call evaluates the requested operation.
func (c *Calculator) Call(_ context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	op, ok := input["op"].(string)
	if !ok || op == "" {
		return nil, fmt.Errorf("op parameter required (string)")
	}

	a, err := number(input, "a")
	if err != nil {
		return nil, err
	}

	var result float64
	switch op {
	case "sqrt":
		if a < 0 {
			return nil, fmt.Errorf("cannot take square root of negative number")
		}
		result = math.Sqrt(a)
	case "add", "sub", "mul", "div", "pow":
		b, err := number(input, "b")
		if err != nil {
			return nil, err
		}
		switch op {
		case "add":
			result = a + b
		case "sub":
			result = a - b
		case "mul":
			result = a * b
		case "div":
			if b == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			result = a / b
		case "pow":
			result = math.Pow(a, b)
		}
	default:
		return nil, fmt.Errorf("unsupported operation: %s", op)
	}

	return map[string]interface{}{"result": result}, nil
}

func number(input map[string]interface{}, key string) (float64, error) {
	switch v := input[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%s parameter required (number)", key)
	}
}
