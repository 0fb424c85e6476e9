package options

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
)

// EvalCondition evaluates an option's visibility condition against the
// current working configuration. An empty condition is always true.
//
// The expression sees the values under `options` plus a few string
// helpers, e.g.:
//
//	options["region"] != ""
//	startsWith(options["machine-type"], "gpu-")
func EvalCondition(condition string, values map[string]string) (bool, error) {
	if condition == "" {
		return true, nil
	}

	env := conditionEnv(values)

	program, err := expr.Compile(condition, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("failed to compile condition: %w", err)
	}

	output, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate condition: %w", err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition did not evaluate to boolean: %v", output)
	}

	return result, nil
}

// conditionEnv builds the expression environment.
func conditionEnv(values map[string]string) map[string]interface{} {
	opts := make(map[string]string, len(values))
	for key, value := range values {
		opts[key] = value
	}

	return map[string]interface{}{
		"options": opts,
		"has": func(key string) bool {
			_, ok := opts[key]
			return ok
		},
		"startsWith": func(s, prefix string) bool {
			return strings.HasPrefix(s, prefix)
		},
		"endsWith": func(s, suffix string) bool {
			return strings.HasSuffix(s, suffix)
		},
		"contains": func(s, substr string) bool {
			return strings.Contains(s, substr)
		},
	}
}
