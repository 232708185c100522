package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "invalid scope",
			code:    CodeInvalidScope,
			wantMsg: "Global mutation listeners must be registered on a document element",
			wantCat: CategoryRuntime,
		},
		{
			name:    "hierarchy",
			code:    CodeHierarchy,
			wantMsg: "Node cannot be inserted at this position",
			wantCat: CategoryTree,
		},
		{
			name:    "config parse",
			code:    CodeConfigParse,
			wantMsg: "Configuration file could not be parsed",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "M999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryRuntime, "file %q not found", "test.go")
	if err.Message != `file "test.go" not found` {
		t.Errorf("Message = %q, want %q", err.Message, `file "test.go" not found`)
	}
	if err.Category != CategoryRuntime {
		t.Errorf("Category = %q, want %q", err.Category, CategoryRuntime)
	}
}

func TestError_Error(t *testing.T) {
	err := New(CodeDoubleDisposal)
	got := err.Error()
	want := "M002: Subscription disposed more than once"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	// Without code
	err2 := &Error{Message: "test error"}
	if err2.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "test error")
	}

	// The cause chain follows the message.
	err3 := New(CodeDoubleDisposal).
		Wrap(Newf(CategoryRuntime, "subscription returned by %s", "OnNodeRemoval")).
		Assertion()
	want = "M002: Subscription disposed more than once: subscription returned by OnNodeRemoval"
	if err3.Error() != want {
		t.Errorf("Error() = %q, want %q", err3.Error(), want)
	}
}

func TestError_Is(t *testing.T) {
	raised := New(CodeInvalidScope).WithDetail("node <p>").Raise()

	if !Is(raised, New(CodeInvalidScope)) {
		t.Error("raised error should match its code")
	}
	if Is(raised, New(CodeDoubleDisposal)) {
		t.Error("raised error should not match another code")
	}
	if !stderrors.Is(raised, New(CodeInvalidScope)) {
		t.Error("standard errors.Is should also match")
	}

	a := &Error{Message: "a"}
	b := &Error{Message: "a"}
	if a.Is(b) {
		t.Error("errors without a code should only match themselves")
	}
}

func TestError_Assertion(t *testing.T) {
	err := New(CodeDoubleDisposal).Assertion()
	if !IsAssertionFailure(err) {
		t.Error("Assertion() should mark the error as an assertion failure")
	}
	if CodeOf(err) != CodeDoubleDisposal {
		t.Errorf("CodeOf() = %q, want %q", CodeOf(err), CodeDoubleDisposal)
	}
	if IsAssertionFailure(New(CodeDoubleDisposal).Raise()) {
		t.Error("Raise() should not mark an assertion failure")
	}
}

func TestError_Redacted(t *testing.T) {
	err := Newf(CategoryTree, "cannot insert %s", "secret-node")
	got := err.Redacted()
	if strings.Contains(got, "secret-node") {
		t.Errorf("Redacted() = %q, should not contain the unsafe value", got)
	}
	if !strings.HasPrefix(got, "cannot insert ") {
		t.Errorf("Redacted() = %q, should keep the format text", got)
	}

	coded := New(CodeNotFound)
	if coded.Redacted() != coded.Error() {
		t.Errorf("Redacted() = %q, registered messages are safe", coded.Redacted())
	}

	wrapped := New(CodeConfigParse).Wrap(fmt.Errorf("bad token near secret-value"))
	got = wrapped.Redacted()
	if strings.Contains(got, "secret-value") {
		t.Errorf("Redacted() = %q, should not contain the cause text", got)
	}
	if !strings.HasPrefix(got, "M041: Configuration file could not be parsed: ") {
		t.Errorf("Redacted() = %q, should keep the code, message and a cause marker", got)
	}
}

func TestError_WithSuggestion(t *testing.T) {
	err := New(CodeInvalidScope).WithSuggestion("Pass the document element")
	if err.Suggestion != "Pass the document element" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
}

func TestError_WithDetail(t *testing.T) {
	err := New(CodeInvalidScope).WithDetail("Custom detail")
	if err.Detail != "Custom detail" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestError_Wrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	err := New(CodeConfigParse).Wrap(inner)

	if err.Wrapped != inner {
		t.Error("Wrapped should be set")
	}
	if err.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
	if !stderrors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, CodeConfigParse) != nil {
		t.Error("FromError(nil) should return nil")
	}

	orig := New(CodeConfigInvalid)
	if got := FromError(fmt.Errorf("loading: %w", orig), CodeConfigParse); got != orig {
		t.Error("FromError should find an Error in the chain")
	}

	plain := &testError{"plain"}
	got := FromError(plain, CodeConfigParse)
	if got.Code != CodeConfigParse {
		t.Errorf("Code = %q, want %q", got.Code, CodeConfigParse)
	}
	if got.Wrapped != plain {
		t.Error("Wrapped should be the plain error")
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func TestFormat(t *testing.T) {
	err := New(CodeInvalidScope).
		WithSuggestion("Pass doc.DocumentElement()").
		Wrap(Newf(CategoryRuntime, "OnInsertion called with %s", "<body>").Wrap(fmt.Errorf("detached")))
	formatted := err.Format(false)

	for _, want := range []string{
		"ERROR M001 [runtime]: Global mutation listeners",
		"OnInsertion, OnRemoval and OnAttributeChange",
		"Cause: OnInsertion called with <body>\n",
		"       detached\n",
		"Hint: Pass doc.DocumentElement()",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format should contain %q, got:\n%s", want, formatted)
		}
	}
	if strings.Contains(formatted, "\033[") {
		t.Error("Format(false) should not contain ANSI codes")
	}
	if !strings.Contains(err.Format(true), "\033[") {
		t.Error("Format(true) should contain ANSI codes")
	}

	bare := (&Error{Message: "plain"}).Format(false)
	if !strings.HasPrefix(bare, "\nERROR: plain\n") {
		t.Errorf("Format without code or category = %q", bare)
	}
}

func TestFormatCompact(t *testing.T) {
	err := New(CodeNotFound).Wrap(fmt.Errorf("div#3"))
	want := "M021: Reference node is not a child of this parent: div#3"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}

	err.WithSuggestion("Insert the reference node first")
	want += " (hint: Insert the reference node first)"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFprint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		rich bool
		want string
	}{
		{
			name: "compact",
			err:  New(CodeUnknownMode).WithSuggestion("Use --mode native").Raise(),
			want: "M060: Unknown observation mode (hint: Use --mode native)\n",
		},
		{
			name: "foreign error",
			err:  fmt.Errorf("unknown flag: --hostz"),
			want: "M061: Command failed: unknown flag: --hostz\n",
		},
		{
			name: "rich",
			err:  New(CodeUnknownMode),
			rich: true,
			want: "Unknown observation mode",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			Fprint(&b, tt.err, tt.rich)
			if tt.rich {
				if !strings.Contains(b.String(), tt.want) || !strings.Contains(b.String(), "\033[") {
					t.Errorf("Fprint(rich) = %q", b.String())
				}
				return
			}
			if b.String() != tt.want {
				t.Errorf("Fprint() = %q, want %q", b.String(), tt.want)
			}
		})
	}

	var b strings.Builder
	Fprint(&b, nil, false)
	if b.Len() != 0 {
		t.Errorf("Fprint(nil) = %q, want nothing", b.String())
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 || codes[0] != CodeInvalidScope {
		t.Fatalf("GetAllCodes() = %v, want sorted codes starting at %s", codes, CodeInvalidScope)
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Errorf("GetAllCodes() not sorted at %d: %v", i, codes)
		}
	}
}

func TestGetTemplate(t *testing.T) {
	tmpl, ok := GetTemplate(CodeConfigWatch)
	if !ok {
		t.Fatal("GetTemplate should find M043")
	}
	if tmpl.Category != CategoryConfig {
		t.Errorf("Category = %q, want %q", tmpl.Category, CategoryConfig)
	}

	if _, ok := GetTemplate("M999"); ok {
		t.Error("GetTemplate should not find M999")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	got = wrapText("", 10)
	if len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}
