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

// Package langconfig holds small, per-language tables that the matcher and
// replacement engine need but that don't belong on the tree-sitter grammar
// handle itself: which node kind must stay last in a composite literal
// (the "rest initializer" rule), and which node kinds count as
// insignificant trivia under Smart strictness.
package langconfig

// RestTrailing maps a language name to the node kind that must remain the
// last sibling in a composite literal's field list. Languages without such
// a construct are absent from the map.
//
// Rust's `..Default::default()` spread inside a struct literal is the
// motivating case: tree-sitter-rust parses it as a `base_field_initializer`
// node, and it is a parse error for any field to follow it textually.
var RestTrailing = map[string]string{
	"rust": "base_field_initializer",
}

// RestTrailingKind returns the configured rest-trailing node kind for lang,
// or "" if the language has no such rule.
func RestTrailingKind(lang string) string {
	return RestTrailing[lang]
}

// TriviaKinds maps a language name to the set of node kinds ignored when
// matching under Smart strictness (comments and, where the grammar reports
// it as a distinct node, raw whitespace).
var TriviaKinds = map[string]map[string]bool{
	"go":         {"comment": true},
	"javascript": {"comment": true},
	"typescript": {"comment": true},
	"python":     {"comment": true},
	"rust":       {"line_comment": true, "block_comment": true},
	"java":       {"line_comment": true, "block_comment": true},
}

// IsTrivia reports whether nodeKind is considered trivia for lang under
// Smart strictness. For a language absent from TriviaKinds, only the kind
// "comment" counts as trivia.
func IsTrivia(lang, nodeKind string) bool {
	set, ok := TriviaKinds[lang]
	if !ok {
		return nodeKind == "comment"
	}
	return set[nodeKind]
}
