package evaluator

import "github.com/cwbudde/jsstatic/internal/runtime"

// CompletionKind is the ES5.1 §8.9 completion type tag.
type CompletionKind uint8

const (
	Normal CompletionKind = iota
	Return
	Break
	Continue
	Throw
)

// Completion is the result of evaluating one statement: which of the five
// completion types it produced, the value carried by Normal/Return, the
// label targeted by a labeled Break/Continue, and the exception carried by
// Throw.
type Completion struct {
	Kind      CompletionKind
	Value     runtime.Value
	Label     string
	Exception *runtime.ExceptionValue
}

func normalCompletion() Completion { return Completion{Kind: Normal} }

func throwCompletion(exc *runtime.ExceptionValue) Completion {
	return Completion{Kind: Throw, Exception: exc}
}

// IsAbrupt reports whether c is anything other than Normal (ES5.1's
// "abrupt completion").
func (c Completion) IsAbrupt() bool { return c.Kind != Normal }
