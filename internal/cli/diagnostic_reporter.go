package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"

	cerrors "github.com/toyz/configen/internal/errors"
)

// DiagnosticReporter provides user-friendly error reporting
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
	colors  bool
}

// NewDiagnosticReporter creates a reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     os.Stderr,
		colors:  !color.NoColor,
	}
}

// SetOutput redirects the reporter and disables colors for w
func (r *DiagnosticReporter) SetOutput(w io.Writer) {
	r.out = w
	r.colors = false
}

// ReportWarning prints a one-line warning
func (r *DiagnosticReporter) ReportWarning(message string) {
	r.paint(color.FgYellow, color.Bold).Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError prints err with its code, location, context and suggestions.
// Collected errors are reported one by one.
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	var multi *cerrors.MultipleErrors
	if stderrors.As(err, &multi) && multi.Count() > 1 {
		r.paint(color.FgRed, color.Bold).Fprintf(r.out, "\n%d errors\n", multi.Count())
		for _, e := range multi.Errors {
			r.ReportError(e)
		}
		return
	}
	if multi != nil && multi.Count() == 1 {
		err = multi.Errors[0]
	}

	var ce cerrors.ConfigenError
	if !stderrors.As(err, &ce) {
		r.paint(color.FgRed).Fprint(r.out, "\nERROR: ")
		fmt.Fprintf(r.out, "%s\n", err.Error())
		return
	}

	r.paint(color.FgRed).Fprintf(r.out, "\nERROR [%s]: ", ce.ErrorCode())
	fmt.Fprintf(r.out, "%s\n", err.Error())

	if r.verbose {
		r.printContext(ce.Context())
		if cause := ce.Unwrap(); cause != nil {
			fmt.Fprintf(r.out, "  cause: %v\n", cause)
		}
	}

	for _, hint := range ce.Suggestions() {
		r.paint(color.FgCyan).Fprint(r.out, "  hint: ")
		fmt.Fprintf(r.out, "%s\n", hint)
	}
}

// printContext prints context entries sorted by key
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(r.out, "  %s: %v\n", k, context[k])
	}
}

func (r *DiagnosticReporter) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if r.colors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}
