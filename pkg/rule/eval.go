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

package rule

import (
	"fmt"
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/sgrep/pkg/lang"
	"github.com/kraklabs/sgrep/pkg/matcher"
	"github.com/kraklabs/sgrep/pkg/pattern"
)

// EvalContext carries the language, pattern cache, and rule catalog an
// Evaluate call needs beyond the rule tree itself.
type EvalContext struct {
	Lang    *lang.Language
	Cache   *pattern.Cache
	Catalog *Catalog
}

// Evaluate runs r against root/source, returning its matches in document
// order of match root. Every Rule variant evaluates to a complete,
// self-contained match set: a bare relational rule (no explicit Self
// anchor) and `not` both default their candidate universe to every named
// node in the tree. This lets `all`/`any` treat every child uniformly as a
// full match set to intersect or union, rather than special-casing which
// child "bounds" the others.
func Evaluate(r *Rule, ectx *EvalContext, root *sitter.Node, source []byte) ([]*matcher.Match, error) {
	if r == nil {
		return nil, nil
	}

	switch r.Kind {
	case KindPattern:
		p, err := ectx.Cache.CompileCached(ectx.Lang, r.PatternText, pattern.CompileOptions{
			Strictness: r.Strictness,
			Selector:   r.Selector,
			Context:    r.Context,
		})
		if err != nil {
			return nil, err
		}
		return matcher.FindAll(p, root, source), nil

	case KindNodeKind:
		return findAllByKind(root, source, r.NodeKind), nil

	case KindRegex:
		return regexMatches(r.regex, source), nil

	case KindMatches:
		if ectx.Catalog == nil {
			return nil, &ValidationError{Reason: fmt.Sprintf("matches(%q) used with no catalog in scope", r.RefID)}
		}
		ref, err := ectx.Catalog.Get(r.RefID)
		if err != nil {
			return nil, err
		}
		return Evaluate(ref.Rule, ectx, root, source)

	case KindAll:
		sets, err := evalAll(r.Children, ectx, root, source)
		if err != nil {
			return nil, err
		}
		return intersectByRoot(sets), nil

	case KindAny:
		sets, err := evalAll(r.Children, ectx, root, source)
		if err != nil {
			return nil, err
		}
		return unionByRoot(sets), nil

	case KindNot:
		inner, err := Evaluate(r.Inner, ectx, root, source)
		if err != nil {
			return nil, err
		}
		universe := universeNamedNodes(root, source)
		return subtractByRange(universe, inner), nil

	case KindInside, KindHas, KindFollows, KindPrecedes:
		var self []*matcher.Match
		var err error
		if r.Self != nil {
			self, err = Evaluate(r.Self, ectx, root, source)
		} else {
			self = universeNamedNodes(root, source)
		}
		if err != nil {
			return nil, err
		}
		other, err := Evaluate(r.Other, ectx, root, source)
		if err != nil {
			return nil, err
		}
		return filterRelational(r.Kind, self, other), nil

	default:
		return nil, &UnsupportedRelationalError{Kind: r.Kind}
	}
}

func evalAll(children []*Rule, ectx *EvalContext, root *sitter.Node, source []byte) ([][]*matcher.Match, error) {
	sets := make([][]*matcher.Match, len(children))
	for i, c := range children {
		s, err := Evaluate(c, ectx, root, source)
		if err != nil {
			return nil, err
		}
		sets[i] = s
	}
	return sets, nil
}

type rangeKey struct {
	start uint32
	end   uint32
}

func keyOf(m *matcher.Match) rangeKey { return rangeKey{m.StartByte, m.EndByte} }

// intersectByRoot keeps only matches whose range appears in every set,
// merging their metavariable bindings. A range where two sets bind the same
// metavariable name to different text is dropped entirely.
func intersectByRoot(sets [][]*matcher.Match) []*matcher.Match {
	if len(sets) == 0 {
		return nil
	}
	counts := map[rangeKey]int{}
	first := map[rangeKey]*matcher.Match{}
	merged := map[rangeKey]map[string]*matcher.Binding{}
	discarded := map[rangeKey]bool{}

	for _, set := range sets {
		seenThisSet := map[rangeKey]bool{}
		for _, m := range set {
			k := keyOf(m)
			if seenThisSet[k] {
				continue
			}
			seenThisSet[k] = true
			counts[k]++
			if _, ok := first[k]; !ok {
				first[k] = m
			}
			if discarded[k] {
				continue
			}
			vars, ok := merged[k]
			if !ok {
				vars = map[string]*matcher.Binding{}
				merged[k] = vars
			}
			for name, b := range m.Vars {
				if existing, ok := vars[name]; ok {
					if existing.Text != b.Text {
						discarded[k] = true
						break
					}
					continue
				}
				vars[name] = b
			}
		}
	}

	var out []*matcher.Match
	for k, c := range counts {
		if c != len(sets) || discarded[k] {
			continue
		}
		base := *first[k]
		base.Vars = merged[k]
		out = append(out, &base)
	}
	sortByRange(out)
	return out
}

// unionByRoot returns the deduplicated union of every set, keeping the
// bindings from the first child (in argument order) that produced a given
// range.
func unionByRoot(sets [][]*matcher.Match) []*matcher.Match {
	seen := map[rangeKey]bool{}
	var out []*matcher.Match
	for _, set := range sets {
		for _, m := range set {
			k := keyOf(m)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, m)
		}
	}
	sortByRange(out)
	return out
}

func subtractByRange(universe, exclude []*matcher.Match) []*matcher.Match {
	excluded := map[rangeKey]bool{}
	for _, m := range exclude {
		excluded[keyOf(m)] = true
	}
	var out []*matcher.Match
	for _, m := range universe {
		if !excluded[keyOf(m)] {
			out = append(out, m)
		}
	}
	return out
}

func sortByRange(matches []*matcher.Match) {
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].StartByte < matches[j-1].StartByte; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
}

// filterRelational keeps self matches that stand in the given relation to
// some match in other. inside/has compare closed (line, col) intervals via
// byte offsets, which are monotonic with document order within one buffer.
// follows/precedes additionally require that the nearest qualifying
// other-match have no intervening other-match between it and self, which
// holds automatically once "nearest" is chosen.
func filterRelational(kind Kind, self, other []*matcher.Match) []*matcher.Match {
	var out []*matcher.Match
	for _, m := range self {
		switch kind {
		case KindInside:
			for _, o := range other {
				if o.StartByte <= m.StartByte && m.EndByte <= o.EndByte {
					out = append(out, m)
					break
				}
			}
		case KindHas:
			for _, o := range other {
				if m.StartByte <= o.StartByte && o.EndByte <= m.EndByte {
					out = append(out, m)
					break
				}
			}
		case KindFollows:
			if hasNearestBefore(m, other) {
				out = append(out, m)
			}
		case KindPrecedes:
			if hasNearestAfter(m, other) {
				out = append(out, m)
			}
		}
	}
	return out
}

func hasNearestBefore(m *matcher.Match, other []*matcher.Match) bool {
	var nearest *matcher.Match
	for _, o := range other {
		if o.EndByte <= m.StartByte && (nearest == nil || o.EndByte > nearest.EndByte) {
			nearest = o
		}
	}
	return nearest != nil
}

func hasNearestAfter(m *matcher.Match, other []*matcher.Match) bool {
	var nearest *matcher.Match
	for _, o := range other {
		if o.StartByte >= m.EndByte && (nearest == nil || o.StartByte < nearest.StartByte) {
			nearest = o
		}
	}
	return nearest != nil
}

// universeNamedNodes returns one Match (with no bindings) per named node in
// the tree, the default candidate set for a relational rule with no
// explicit Self anchor and for `not`.
func universeNamedNodes(root *sitter.Node, source []byte) []*matcher.Match {
	var out []*matcher.Match
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.IsNamed() {
			out = append(out, nodeMatch(n, source))
		}
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

func findAllByKind(root *sitter.Node, source []byte, kind string) []*matcher.Match {
	var out []*matcher.Match
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == kind {
			out = append(out, nodeMatch(n, source))
		}
		count := int(n.ChildCount())
		for i := 0; i < count; i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

func nodeMatch(n *sitter.Node, source []byte) *matcher.Match {
	start := n.StartPoint()
	end := n.EndPoint()
	return &matcher.Match{
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column),
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column),
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
		Text:      n.Content(source),
		Vars:      map[string]*matcher.Binding{},
	}
}

func regexMatches(re *regexp.Regexp, source []byte) []*matcher.Match {
	if re == nil {
		return nil
	}
	locs := re.FindAllIndex(source, -1)
	out := make([]*matcher.Match, 0, len(locs))
	for _, loc := range locs {
		startLine, startCol := lineCol(source, loc[0])
		endLine, endCol := lineCol(source, loc[1])
		out = append(out, &matcher.Match{
			StartLine: startLine,
			StartCol:  startCol,
			EndLine:   endLine,
			EndCol:    endCol,
			StartByte: uint32(loc[0]),
			EndByte:   uint32(loc[1]),
			Text:      string(source[loc[0]:loc[1]]),
			Vars:      map[string]*matcher.Binding{},
		})
	}
	return out
}

func lineCol(source []byte, offset int) (line, col int) {
	line = 1
	lastNL := -1
	for i := 0; i < offset && i < len(source); i++ {
		if source[i] == '\n' {
			line++
			lastNL = i
		}
	}
	col = offset - lastNL - 1
	if col < 0 {
		col = 0
	}
	return line, col
}
