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

package pattern

import "fmt"

// Strictness selects the equivalence relation the matcher uses when
// comparing a pattern node to a target node.
type Strictness int

const (
	// Smart ignores trivia (whitespace, comments) on either side. Default.
	Smart Strictness = iota

	// Cst requires every node kind and token, including trivia, to line up.
	Cst

	// Ast ignores insignificant syntax (trivia, and unnamed punctuation
	// tokens) but still requires literal kinds to match exactly.
	Ast

	// Relaxed is Ast plus: literal node kinds may differ as long as their
	// text is equal (e.g. a numeric literal matching a string literal with
	// the same text).
	Relaxed

	// Signature compares only node kinds; metavariables match any node of
	// the corresponding placeholder kind.
	Signature
)

// String renders the strictness as its lower-case spec name.
func (s Strictness) String() string {
	switch s {
	case Cst:
		return "cst"
	case Smart:
		return "smart"
	case Ast:
		return "ast"
	case Relaxed:
		return "relaxed"
	case Signature:
		return "signature"
	default:
		return fmt.Sprintf("strictness(%d)", int(s))
	}
}

// ParseStrictness parses the spec's strictness names, defaulting to Smart
// for an empty string. An unrecognized name is an error.
func ParseStrictness(s string) (Strictness, error) {
	switch s {
	case "", "smart":
		return Smart, nil
	case "cst":
		return Cst, nil
	case "ast":
		return Ast, nil
	case "relaxed":
		return Relaxed, nil
	case "signature":
		return Signature, nil
	default:
		return Smart, fmt.Errorf("unknown strictness: %q", s)
	}
}
