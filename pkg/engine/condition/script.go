package condition

import (
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/pellig/statblock/pkg/errors"
)

// Evaluator runs a boolean expression against a set of bindings.
// Implementations must not leak state between evaluations.
type Evaluator interface {
	Evaluate(expr string, bindings map[string]any) (bool, error)
}

// DefaultScriptTimeout bounds a single condition evaluation. Conditions are
// one-line expressions; anything running this long is stuck.
const DefaultScriptTimeout = 250 * time.Millisecond

// ScriptEvaluator evaluates expressions in a fresh goja runtime per call.
// The runtime is discarded afterwards, so a malformed or hostile script
// cannot retain state or observe other evaluations. Execution is
// interrupted after Timeout.
type ScriptEvaluator struct {
	// Timeout overrides DefaultScriptTimeout when positive.
	Timeout time.Duration
}

// NewScriptEvaluator returns an evaluator with the default timeout.
func NewScriptEvaluator() *ScriptEvaluator {
	return &ScriptEvaluator{}
}

// Evaluate runs expr with the given bindings as runtime globals and returns
// its truthiness. Parse errors, thrown exceptions, interrupts, and panics
// all surface as errors.
func (e *ScriptEvaluator) Evaluate(expr string, bindings map[string]any) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = errors.New(errors.ErrCodeScript, "condition script panicked: %v", r)
		}
	}()

	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())
	for name, value := range bindings {
		if err := vm.Set(name, value); err != nil {
			return false, errors.Wrap(errors.ErrCodeScript, err, "bind %q", name)
		}
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultScriptTimeout
	}
	timer := time.AfterFunc(timeout, func() {
		vm.Interrupt(fmt.Sprintf("condition timed out after %s", timeout))
	})
	defer timer.Stop()

	value, runErr := vm.RunString(expr)
	if runErr != nil {
		if _, interrupted := runErr.(*goja.InterruptedError); interrupted {
			return false, errors.Wrap(errors.ErrCodeScriptTimeout, runErr, "condition %q", expr)
		}
		return false, errors.Wrap(errors.ErrCodeScript, runErr, "condition %q", expr)
	}
	return value.ToBoolean(), nil
}
