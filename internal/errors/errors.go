// Copyright 2026 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package errors provides structured error handling for sgrep's service
// façade and CLI front end.
//
// This package defines UserError, a type that carries structured error
// information including what went wrong, why it happened, and how to fix
// it, plus an exit code for consistent CLI exit behavior.
//
// # Usage Example
//
//	err := errors.NewSandboxError(
//	    "path escapes configured roots",
//	    "glob \"../../etc/passwd\" resolves outside every root",
//	    "use a glob relative to one of the configured roots",
//	    underlyingErr,
//	)
//	if err != nil {
//	    errors.FatalError(err, false)
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): successful execution
//   - ExitUnknownLanguage (1): language name not registered
//   - ExitPatternSyntax (2): pattern cannot be parsed in the target language
//   - ExitRuleValidation (3): rule document malformed or cyclic
//   - ExitSandboxViolation (4): path traversal or escape from configured roots
//   - ExitIO (5): file missing, permission denied, write failure
//   - ExitUnsupportedRelational (6): relational rule form not lowered
//   - ExitInternal (10): bugs, unexpected panics
//
// SizeExceeded and DuplicateRuleId are diagnostics, not exit paths: they
// never reach FatalError.
package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/kraklabs/sgrep/pkg/lang"
	"github.com/kraklabs/sgrep/pkg/pattern"
	"github.com/kraklabs/sgrep/pkg/replace"
	"github.com/kraklabs/sgrep/pkg/rule"
	"github.com/kraklabs/sgrep/pkg/sandbox"
)

// Exit codes, one per error kind this package classifies.
const (
	ExitSuccess               = 0
	ExitUnknownLanguage       = 1
	ExitPatternSyntax         = 2
	ExitRuleValidation        = 3
	ExitSandboxViolation      = 4
	ExitIO                    = 5
	ExitUnsupportedRelational = 6
	ExitInternal              = 10
)

// UserError represents an error with structured context for end users.
//
// It provides three levels of information:
//   - Message: What went wrong (user-facing error description)
//   - Cause: Why it happened (diagnostic information)
//   - Fix: How to fix it (actionable suggestion)
//
// UserError also carries an exit code for consistent CLI exit behavior
// and optionally wraps an underlying error for error chain compatibility.
type UserError struct {
	Message  string
	Cause    string
	Fix      string
	ExitCode int
	Err      error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements error unwrapping for compatibility with errors.Is/As.
func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUnknownLanguageError creates an error for a language name that isn't
// registered.
func NewUnknownLanguageError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitUnknownLanguage, Err: err}
}

// NewPatternSyntaxError creates an error for a pattern that fails to parse
// in the target language.
func NewPatternSyntaxError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitPatternSyntax, Err: err}
}

// NewRuleValidationError creates an error for a malformed or cyclic rule
// document.
func NewRuleValidationError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitRuleValidation, Err: err}
}

// NewSandboxError creates an error for a path that escapes the configured
// sandbox roots.
func NewSandboxError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitSandboxViolation, Err: err}
}

// NewIOError creates an error for a filesystem failure: missing file,
// permission denied, or write failure.
func NewIOError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitIO, Err: err}
}

// NewUnsupportedRelationalError creates an error for a relational rule form
// that has no concrete anchor to lower against.
func NewUnsupportedRelationalError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitUnsupportedRelational, Err: err}
}

// NewInternalError creates an error for a bug or unexpected panic.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitInternal, Err: err}
}

// Classify converts an error surfaced by any core package into a UserError
// carrying the right exit code, so there is one place that maps the typed
// errors of pkg/lang, pkg/pattern, pkg/rule, pkg/sandbox, and pkg/replace
// onto a single taxonomy rather than scattering type switches across call
// sites. pkg/service returns those typed errors unconverted; FatalError
// classifies them at the CLI boundary.
func Classify(err error) *UserError {
	if err == nil {
		return nil
	}
	if ue, ok := err.(*UserError); ok {
		return ue
	}

	switch e := err.(type) {
	case *lang.ErrUnknownLanguage:
		return NewUnknownLanguageError("unknown language", e.Error(), "check list_languages for the supported names", err)
	case *pattern.SyntaxError:
		return NewPatternSyntaxError("pattern cannot be parsed", e.Error(), "check the pattern against the target language's grammar, or wrap it in a context template", err)
	case *pattern.SelectorError:
		return NewPatternSyntaxError("pattern selector not found", e.Error(), "choose a node kind that actually appears in the context template", err)
	case *rule.ValidationError:
		return NewRuleValidationError("rule document is invalid", e.Error(), "fix the reported field and reload the catalog", err)
	case *rule.CycleError:
		return NewRuleValidationError("cyclic matches(id) reference", e.Error(), "break the cycle between the listed rule ids", err)
	case *rule.UnsupportedRelationalError:
		return NewUnsupportedRelationalError("unsupported relational rule", e.Error(), "rewrite the rule using inside/has/follows/precedes with a concrete anchor", err)
	case *sandbox.ViolationError:
		return NewSandboxError("path is not permitted", e.Error(), "use a glob relative to one of the configured roots", err)
	case *replace.UnboundMetavarError:
		return NewRuleValidationError("replacement references an unbound metavariable", e.Error(), "bind every metavariable used in the fix template in the rule's pattern", err)
	case *replace.OverlapError:
		return NewInternalError("overlapping edits", e.Error(), "report this as a bug", err)
	default:
		return NewInternalError("unexpected error", err.Error(), "report this as a bug", err)
	}
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display. Color
// output respects the NO_COLOR environment variable and can be explicitly
// disabled with the noColor parameter.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON represents error information in JSON format.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode,
	}
}

// FatalError prints the error and exits with the appropriate code. It never
// returns.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}

	ue := Classify(err)
	if jsonOutput {
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		_ = enc.Encode(ue.ToJSON())
	} else {
		fmt.Fprint(os.Stderr, ue.Format(false))
	}
	os.Exit(ue.ExitCode)
}
