package errors

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// detailWidth is the column at which Detail text wraps.
const detailWidth = 70

// style paints one part of a report.
type style func(string) string

func sgr(code string) style {
	return func(s string) string { return "\033[" + code + "m" + s + "\033[0m" }
}

func unstyled(s string) string { return s }

// palette assigns a style to each part of a report.
type palette struct {
	tag     style
	message style
	label   style
	hint    style
}

var (
	plainPalette = palette{tag: unstyled, message: unstyled, label: unstyled, hint: unstyled}
	colorPalette = palette{tag: sgr("1;31"), message: sgr("1"), label: sgr("90"), hint: sgr("36")}
)

// tag is the report prefix: "ERROR", then the code and the category when set.
func (e *Error) tag() string {
	parts := []string{"ERROR"}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	if e.Category != "" {
		parts = append(parts, "["+string(e.Category)+"]")
	}
	return strings.Join(parts, " ") + ":"
}

// causes lists the wrapped chain, one entry per level. Nested *Error values
// contribute their headline; the first foreign error ends the chain.
func (e *Error) causes() []string {
	var out []string
	for err := e.Wrapped; err != nil; {
		inner, ok := err.(*Error)
		if !ok {
			out = append(out, err.Error())
			break
		}
		out = append(out, inner.headline())
		err = inner.Wrapped
	}
	return out
}

// Format renders e as a multi-line report for a terminal:
//
//	ERROR M001 [runtime]: message
//
//	  detail, wrapped
//
//	  Cause: first cause
//	         deeper cause
//
//	  Hint: suggestion
func (e *Error) Format(color bool) string {
	p := plainPalette
	if color {
		p = colorPalette
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s %s\n\n", p.tag(e.tag()), p.message(e.Message))

	if lines := wrapText(e.Detail, detailWidth); len(lines) > 0 {
		for _, line := range lines {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
	}

	if causes := e.causes(); len(causes) > 0 {
		for i, c := range causes {
			label := "Cause: "
			if i > 0 {
				label = strings.Repeat(" ", len(label))
			}
			fmt.Fprintf(&b, "  %s%s\n", p.label(label), c)
		}
		b.WriteString("\n")
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s%s\n\n", p.hint("Hint: "), e.Suggestion)
	}
	return b.String()
}

// FormatCompact renders e on one line, with the suggestion appended.
func (e *Error) FormatCompact() string {
	if e.Suggestion == "" {
		return e.Error()
	}
	return e.Error() + " (hint: " + e.Suggestion + ")"
}

func wrapText(text string, width int) []string {
	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+1+len(word) > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// Fprint writes err to w. Errors that are not an *Error are reported under
// CodeUsage. A rich report is the coloured Format; otherwise err is written
// on one line.
func Fprint(w io.Writer, err error, rich bool) {
	e := FromError(err, CodeUsage)
	if e == nil {
		return
	}
	if rich {
		fmt.Fprint(w, e.Format(true))
		return
	}
	fmt.Fprintln(w, e.FormatCompact())
}

// PrintError writes err to stderr, as a full report when stderr is a
// terminal.
func PrintError(err error) {
	Fprint(os.Stderr, err, isatty.IsTerminal(os.Stderr.Fd()))
}
