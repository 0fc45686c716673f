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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/sgrep/pkg/langconfig"
	"github.com/kraklabs/sgrep/pkg/pattern"
)

// matchNode attempts to match a single pattern node against a single target
// node, recording metavariable bindings into ctx.Bindings. A metavariable
// bound more than once in the same pattern must capture byte-for-byte equal
// text every time; mismatches fail the whole attempt.
func matchNode(pat *pattern.PNode, target *sitter.Node, ctx *matchCtx) bool {
	if pat == nil {
		return target == nil
	}

	if pat.IsMeta {
		return bindMeta(pat, target, ctx)
	}
	if target == nil {
		return false
	}

	kindMatches := pat.Kind == target.Type()
	if !kindMatches {
		if ctx.Strictness == pattern.Relaxed && isLiteralKind(pat.Kind) && isLiteralKind(target.Type()) {
			return pat.Text == target.Content(ctx.Source)
		}
		return false
	}

	patChildren := filterPatternChildren(pat.Children, ctx)
	targetChildren := filterTargetChildren(target, ctx)

	if len(patChildren) == 0 && len(targetChildren) == 0 {
		if ctx.Strictness == pattern.Signature {
			return true
		}
		return pat.Text == target.Content(ctx.Source)
	}

	return matchChildren(patChildren, targetChildren, ctx)
}

// bindMeta handles a metavariable leaf: single-node ($NAME, $_) or, when
// reached outside a sibling-list context, a multi-node one treated as
// matching exactly the one target node it stands in for.
func bindMeta(pat *pattern.PNode, target *sitter.Node, ctx *matchCtx) bool {
	if target == nil {
		return false
	}
	if ctx.Strictness == pattern.Signature && pat.Kind != target.Type() {
		return false
	}

	text := target.Content(ctx.Source)
	binding := &Binding{Text: text, StartByte: target.StartByte(), EndByte: target.EndByte()}
	if pat.MetaMulti {
		binding.Seq = []string{text}
	}

	if pat.MetaAnon {
		return true
	}

	if existing, ok := ctx.Bindings[pat.MetaName]; ok {
		return existing.Text == binding.Text
	}
	ctx.Bindings[pat.MetaName] = binding
	return true
}

// matchChildren matches a pattern child sequence against a target child
// sequence. At most one child in patChildren may be a multi-node
// metavariable; it absorbs whatever target siblings remain once the
// children before and after it are matched one-to-one against the target
// sequence's head and tail.
func matchChildren(patChildren []*pattern.PNode, targetChildren []*sitter.Node, ctx *matchCtx) bool {
	multiIdx := -1
	for i, pc := range patChildren {
		if pc.IsMeta && pc.MetaMulti {
			multiIdx = i
			break
		}
	}

	if multiIdx == -1 {
		if len(patChildren) != len(targetChildren) {
			return false
		}
		for i, pc := range patChildren {
			if !matchNode(pc, targetChildren[i], ctx) {
				return false
			}
		}
		return true
	}

	before := patChildren[:multiIdx]
	after := patChildren[multiIdx+1:]
	if len(before)+len(after) > len(targetChildren) {
		return false
	}

	for i, pc := range before {
		if !matchNode(pc, targetChildren[i], ctx) {
			return false
		}
	}

	tailStart := len(targetChildren) - len(after)
	for i, pc := range after {
		if !matchNode(pc, targetChildren[tailStart+i], ctx) {
			return false
		}
	}

	middle := targetChildren[len(before):tailStart]
	return bindMultiSeq(patChildren[multiIdx], middle, ctx)
}

// bindMultiSeq records the binding for a $$$NAME metavariable that absorbed
// zero or more target siblings. The bound Text is the raw source slice from
// the first captured sibling's start to the last one's end, which preserves
// the original whitespace between them without any extra joining logic.
// Seq and SeqKinds list only the named siblings.
func bindMultiSeq(pat *pattern.PNode, middle []*sitter.Node, ctx *matchCtx) bool {
	seq := make([]string, 0, len(middle))
	kinds := make([]string, 0, len(middle))
	var text string
	var startByte, endByte uint32
	if len(middle) > 0 {
		startByte = middle[0].StartByte()
		endByte = middle[len(middle)-1].EndByte()
		text = string(ctx.Source[startByte:endByte])
		for _, m := range middle {
			if !m.IsNamed() {
				continue
			}
			seq = append(seq, m.Content(ctx.Source))
			kinds = append(kinds, m.Type())
		}
	}

	if pat.MetaAnon {
		return true
	}

	binding := &Binding{Text: text, Seq: seq, SeqKinds: kinds, StartByte: startByte, EndByte: endByte}
	if existing, ok := ctx.Bindings[pat.MetaName]; ok {
		return existing.Text == binding.Text
	}
	ctx.Bindings[pat.MetaName] = binding
	return true
}

// filterPatternChildren applies the strictness-appropriate child selection
// to a pattern node's children: Cst keeps everything; Smart drops trivia;
// Ast/Relaxed/Signature keep only named children (and drop trivia too, in
// case a grammar reports a trivia kind as named).
func filterPatternChildren(children []*pattern.PNode, ctx *matchCtx) []*pattern.PNode {
	out := make([]*pattern.PNode, 0, len(children))
	for _, c := range children {
		if c.IsMeta {
			out = append(out, c)
			continue
		}
		if ctx.Strictness == pattern.Cst {
			out = append(out, c)
			continue
		}
		if langconfig.IsTrivia(ctx.LangName, c.Kind) {
			continue
		}
		if ctx.Strictness == pattern.Smart {
			out = append(out, c)
			continue
		}
		if c.IsNamed {
			out = append(out, c)
		}
	}
	return out
}

func filterTargetChildren(n *sitter.Node, ctx *matchCtx) []*sitter.Node {
	count := int(n.ChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		c := n.Child(i)
		if ctx.Strictness == pattern.Cst {
			out = append(out, c)
			continue
		}
		if langconfig.IsTrivia(ctx.LangName, c.Type()) {
			continue
		}
		if ctx.Strictness == pattern.Smart {
			out = append(out, c)
			continue
		}
		if c.IsNamed() {
			out = append(out, c)
		}
	}
	return out
}

// isLiteralKind reports whether a tree-sitter node kind denotes a literal
// value (numbers, strings, etc.), used to relax kind comparison under
// Relaxed strictness.
func isLiteralKind(kind string) bool {
	lower := strings.ToLower(kind)
	return strings.Contains(lower, "literal") || lower == "number" || lower == "string"
}
