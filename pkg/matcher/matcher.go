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

package matcher

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/sgrep/pkg/pattern"
)

// Binding is the captured value of one metavariable in a single match.
// Seq is nil for a single-node ($NAME) binding and holds the ordered texts
// of the named siblings for a multi-node ($$$NAME) binding (unnamed tokens
// such as separating commas are left out); Text always holds
// the full captured span, including original inter-sibling whitespace for
// multi bindings.
type Binding struct {
	Text      string
	Seq       []string
	SeqKinds  []string
	StartByte uint32
	EndByte   uint32
}

// Match is one closed range in a source buffer matched by a pattern,
// together with its metavariable bindings.
type Match struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
	StartByte uint32
	EndByte   uint32
	Text      string
	Vars      map[string]*Binding
}

// matchCtx carries the per-attempt state threaded through matchNode and
// matchChildren: the strictness in effect, the language's trivia table, the
// target source buffer, and the bindings accumulated so far.
type matchCtx struct {
	Strictness pattern.Strictness
	LangName   string
	Source     []byte
	Bindings   map[string]*Binding
}

// FindAll returns every non-overlapping match of p rooted anywhere in the
// subtree under root, in document order. Once a node matches, its
// descendants are not also searched, so reported matches never nest or
// overlap.
func FindAll(p *pattern.Pattern, root *sitter.Node, source []byte) []*Match {
	var results []*Match
	var coveredEnd uint32

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.StartByte() < coveredEnd {
			return
		}

		ctx := &matchCtx{
			Strictness: p.Strictness,
			LangName:   p.Lang.Name,
			Source:     source,
			Bindings:   make(map[string]*Binding),
		}

		if matchNode(p.Root, n, ctx) && allMetaNamesBound(p.MetaNames, ctx.Bindings) {
			results = append(results, buildMatch(n, source, ctx.Bindings))
			coveredEnd = n.EndByte()
			return
		}

		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			walk(n.Child(i))
		}
	}

	walk(root)
	return results
}

func allMetaNamesBound(names []string, bindings map[string]*Binding) bool {
	for _, n := range names {
		if _, ok := bindings[n]; !ok {
			return false
		}
	}
	return true
}

func buildMatch(n *sitter.Node, source []byte, bindings map[string]*Binding) *Match {
	start := n.StartPoint()
	end := n.EndPoint()
	return &Match{
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column),
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column),
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
		Text:      n.Content(source),
		Vars:      bindings,
	}
}
