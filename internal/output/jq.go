package output

import (
	"fmt"

	"github.com/itchyny/gojq"
)

// ApplyJQ runs a jq expression over normalized response data and returns
// the filtered result. A single output is returned as-is; multiple outputs
// are collected into a slice.
func ApplyJQ(expr string, data any) (any, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, ErrUsageHint(fmt.Sprintf("invalid jq expression: %v", err), "Check the expression syntax")
	}

	input := NormalizeData(data)
	// gojq only accepts []any for arrays
	if maps, ok := input.([]map[string]any); ok {
		elems := make([]any, len(maps))
		for i, m := range maps {
			elems[i] = m
		}
		input = elems
	}

	var outputs []any
	iter := query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if e, isErr := v.(error); isErr {
			return nil, ErrUsage(fmt.Sprintf("jq: %v", e))
		}
		outputs = append(outputs, v)
	}

	switch len(outputs) {
	case 0:
		return nil, nil
	case 1:
		return outputs[0], nil
	default:
		return outputs, nil
	}
}
