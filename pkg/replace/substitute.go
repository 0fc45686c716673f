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

package replace

import (
	"fmt"
	"strings"

	"github.com/kraklabs/sgrep/pkg/langconfig"
	"github.com/kraklabs/sgrep/pkg/matcher"
	"github.com/kraklabs/sgrep/pkg/pattern"
)

// UnboundMetavarError reports that a replacement template referenced a
// metavariable with no binding in the match it was applied to.
type UnboundMetavarError struct {
	Name string
}

func (e *UnboundMetavarError) Error() string {
	return fmt.Sprintf("replace: metavariable $%s is not bound in this match", e.Name)
}

// Substitute expands every `$NAME`/`$$$NAME` occurrence in template with its
// bound text from bindings. langName selects the rest-initializer policy
// from pkg/langconfig: if the last metavariable
// reference in the template is a multi-binding whose captured sibling
// sequence ends with the language's configured rest-trailing node kind, any
// template content appended after that reference is moved to precede the
// rest token rather than follow it, so the rewritten text stays syntactically
// valid (see splitRestTrailing below). `$_` is never valid in a replacement
// template, since it carries no captured text to substitute.
func Substitute(langName, template string, bindings map[string]*matcher.Binding) (string, error) {
	tokens := pattern.ScanMetavars(template)
	if len(tokens) == 0 {
		return template, nil
	}

	restKind := langconfig.RestTrailingKind(langName)

	lastIdx := len(tokens) - 1
	lastToken := tokens[lastIdx]
	lastBinding, lastOK := bindings[lastToken.Name]
	triggersRestPolicy := restKind != "" && lastToken.Multi && !lastToken.Anonymous && lastOK &&
		len(lastBinding.SeqKinds) > 0 && lastBinding.SeqKinds[len(lastBinding.SeqKinds)-1] == restKind

	var out strings.Builder
	last := 0
	for i, t := range tokens {
		out.WriteString(template[last:t.Start])
		last = t.End

		if t.Anonymous {
			return "", fmt.Errorf("replace: $_ has no captured text to substitute")
		}
		b, ok := bindings[t.Name]
		if !ok {
			return "", &UnboundMetavarError{Name: t.Name}
		}

		if triggersRestPolicy && i == lastIdx {
			fieldsText, restText := splitRestTrailing(b)
			tail := template[t.End:]
			rewritten := applyRestPolicy(fieldsText, restText, tail)
			out.WriteString(rewritten)
			return out.String(), nil
		}

		out.WriteString(b.Text)
	}
	out.WriteString(template[last:])
	return out.String(), nil
}

// splitRestTrailing splits a multi-binding's captured text into the fields
// before its trailing rest node and the rest node's own text, using the
// parallel Seq/SeqKinds arrays recorded by the matcher.
func splitRestTrailing(b *matcher.Binding) (fields string, rest string) {
	n := len(b.Seq)
	if n == 0 {
		return "", ""
	}
	rest = b.Seq[n-1]
	if n == 1 {
		return "", rest
	}
	// fieldsText is the original source slice up to (but excluding) the
	// rest element, which preserves the separators between the remaining
	// fields without re-joining them ourselves.
	fieldsEnd := strings.LastIndex(b.Text, rest)
	if fieldsEnd <= 0 {
		return strings.Join(b.Seq[:n-1], ", "), rest
	}
	fields = strings.TrimRight(b.Text[:fieldsEnd], " \t\n,")
	return fields, rest
}

// applyRestPolicy reassembles fieldsText (the fields preceding the rest
// token), any new content the template appended right after the binding
// (extracted from tail, with trailing closing punctuation left in place),
// and the rest token's own text, so that the rest token ends up last.
func applyRestPolicy(fieldsText, restText, tail string) string {
	closingStart := len(tail)
	for closingStart > 0 && strings.ContainsRune(" \t\n)]}", rune(tail[closingStart-1])) {
		closingStart--
	}
	newContent := strings.TrimRight(tail[:closingStart], " \t\n")
	newContent = strings.TrimLeft(newContent, " \t\n,")
	closing := tail[closingStart:]

	var b strings.Builder
	b.WriteString(fieldsText)
	if newContent != "" {
		if fieldsText != "" {
			b.WriteString(", ")
		}
		b.WriteString(newContent)
	}
	if fieldsText != "" || newContent != "" {
		b.WriteString(", ")
	}
	b.WriteString(restText)
	b.WriteString(closing)
	return b.String()
}
