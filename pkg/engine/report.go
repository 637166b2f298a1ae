package engine

import (
	"fmt"
	"strings"

	"github.com/cwbudde/jsstatic/internal/errors"
	"github.com/cwbudde/jsstatic/internal/events"
)

// Report is the structured result of one Engine.Run: every diagnostic
// reported in recovery mode, every file entered, and the run id every
// event in it carried (§7: "in recovery mode, the engine always
// terminates with a structured list of reported errors, warnings, and
// entered files").
type Report struct {
	RunID        string
	Errors       []errors.Diagnostic
	Warnings     []errors.Diagnostic
	EnteredFiles []string

	undeclaredGlobals []string
}

// observe folds one plugin-observation event into the report. It is the
// subscriber Engine.Run registers for the duration of one run; it is
// unexported, so code outside this package cannot call it.
func (r *Report) observe(ev events.Event) {
	switch ev.Kind {
	case events.ErrorReported:
		r.Errors = append(r.Errors, diagnosticFromEvent(ev))
	case events.WarningReported:
		r.Warnings = append(r.Warnings, diagnosticFromEvent(ev))
	case events.UndeclaredGlobalVariableCreated:
		r.undeclaredGlobals = append(r.undeclaredGlobals, ev.Name)
	}
}

func diagnosticFromEvent(ev events.Event) errors.Diagnostic {
	d := errors.Diagnostic{Kind: ev.ErrorKind, Message: ev.Message}
	if st, ok := ev.StackTrace.(errors.StackTrace); ok {
		d.StackTrace = st
	}
	return d
}

// UndeclaredGlobals lists every implicit global variable created during
// the run (non-strict assignment to an unresolvable reference, §4.2).
func (r *Report) UndeclaredGlobals() []string { return r.undeclaredGlobals }

// Clean reports whether the run produced no errors or warnings.
func (r *Report) Clean() bool { return len(r.Errors) == 0 && len(r.Warnings) == 0 }

// String renders a human-readable summary, one diagnostic per line,
// suitable for a CLI driver to print directly (cmd/jsac's "analyze").
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %d file(s) entered, %d error(s), %d warning(s)\n",
		r.RunID, len(r.EnteredFiles), len(r.Errors), len(r.Warnings))
	for _, d := range r.Errors {
		fmt.Fprintf(&b, "  error: %s\n", d.String())
	}
	for _, d := range r.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", d.String())
	}
	return b.String()
}
