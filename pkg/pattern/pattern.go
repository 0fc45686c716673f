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

// Package pattern compiles a pattern snippet written in a target language's
// own syntax into a reusable matcher. A pattern is itself a parse tree:
// metavariable leaves ($NAME, $$$NAME, $_) are substituted with placeholder
// identifiers before parsing so that the host grammar accepts the text,
// then recovered by walking the resulting tree for nodes whose content is
// exactly one of the placeholders.
package pattern

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/sgrep/pkg/lang"
)

// SyntaxError reports that a pattern (or its context template) could not be
// parsed, optionally with a byte offset into the text that was parsed.
type SyntaxError struct {
	Text   string
	Offset int
	HasOff bool
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.HasOff {
		return fmt.Sprintf("pattern syntax error at offset %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("pattern syntax error: %s", e.Reason)
}

// SelectorError reports that a compile-time selector node kind never
// appears in the parsed context/pattern tree.
type SelectorError struct {
	Selector string
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("selector kind %q not present in pattern", e.Selector)
}

// metaDescriptor records one metavariable occurrence found while scanning
// the raw pattern text, keyed by the placeholder identifier substituted in
// its place.
type metaDescriptor struct {
	Placeholder string
	Name        string
	Multi       bool
	Anonymous   bool
}

// multiRe matches `$$$NAME`; singleRe matches `$NAME` (including `$_`, the
// anonymous wildcard, which is recognized by its captured name being "_").
var (
	multiRe  = regexp.MustCompile(`\$\$\$([A-Za-z_][A-Za-z0-9_]*)`)
	singleRe = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	metaRe   = regexp.MustCompile(multiRe.String() + `|` + singleRe.String())
)

// PNode is the compiled form of one pattern tree node: either a literal
// structural node (mirroring a tree-sitter node kind and, for leaves, its
// text) or a metavariable.
type PNode struct {
	Kind     string
	IsNamed  bool
	Text     string
	Children []*PNode

	IsMeta    bool
	MetaName  string
	MetaMulti bool
	MetaAnon  bool
}

// CacheKey is the LRU cache key for a compiled pattern.
type CacheKey struct {
	Lang       string
	Pattern    string
	Strictness Strictness
	Selector   string
	Context    string
}

// CompileOptions carries the optional inputs to Compile beyond the bare
// pattern text.
type CompileOptions struct {
	Strictness Strictness
	Selector   string
	Context    string
}

// Pattern is the compiled, reusable form of a pattern string for a specific
// language.
type Pattern struct {
	Lang       *lang.Language
	Text       string
	Strictness Strictness
	Selector   string
	Context    string
	Root       *PNode
	MetaNames  []string
	Key        CacheKey
}

// Compile parses patternText (optionally embedded in a context template at
// its `$PATTERN` hole) into a reusable Pattern for lang.
func Compile(l *lang.Language, patternText string, opts CompileOptions) (*Pattern, error) {
	if l == nil {
		return nil, fmt.Errorf("pattern: nil language")
	}

	fullText := patternText
	if opts.Context != "" {
		if !strings.Contains(opts.Context, "$PATTERN") {
			return nil, &SyntaxError{Text: opts.Context, Reason: "context template has no $PATTERN hole"}
		}
		fullText = strings.Replace(opts.Context, "$PATTERN", patternText, 1)
	}

	substituted, descriptors := substituteMetavars(fullText)

	parser := sitter.NewParser()
	parser.SetLanguage(l.Grammar)
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(substituted))
	if err != nil {
		return nil, &SyntaxError{Text: substituted, Reason: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, &SyntaxError{Text: substituted, Reason: "empty parse tree"}
	}

	var matchRoot *sitter.Node
	if opts.Selector != "" {
		matchRoot = findByKind(root, opts.Selector)
		if matchRoot == nil {
			return nil, &SelectorError{Selector: opts.Selector}
		}
	} else {
		matchRoot = unwrapSingleChild(root)
	}

	byPlaceholder := make(map[string]metaDescriptor, len(descriptors))
	for _, d := range descriptors {
		byPlaceholder[d.Placeholder] = d
	}

	source := []byte(substituted)
	pnode := convert(matchRoot, source, byPlaceholder)

	names := map[string]bool{}
	collectNames(pnode, names)
	metaNames := make([]string, 0, len(names))
	for n := range names {
		metaNames = append(metaNames, n)
	}

	return &Pattern{
		Lang:       l,
		Text:       patternText,
		Strictness: opts.Strictness,
		Selector:   opts.Selector,
		Context:    opts.Context,
		Root:       pnode,
		MetaNames:  metaNames,
		Key: CacheKey{
			Lang:       l.Name,
			Pattern:    patternText,
			Strictness: opts.Strictness,
			Selector:   opts.Selector,
			Context:    opts.Context,
		},
	}, nil
}

// MetaToken is one `$$$NAME`/`$NAME`/`$_` occurrence found by ScanMetavars,
// with its byte offsets in the scanned text.
type MetaToken struct {
	Name      string
	Multi     bool
	Anonymous bool
	Start     int
	End       int
}

// ScanMetavars finds every metavariable occurrence in text, in order. It is
// shared by pattern compilation (which substitutes occurrences with
// placeholder identifiers before parsing) and the replacement engine (which
// substitutes occurrences with bound text).
func ScanMetavars(text string) []MetaToken {
	matches := metaRe.FindAllStringSubmatchIndex(text, -1)
	tokens := make([]MetaToken, 0, len(matches))
	for _, m := range matches {
		start, end := m[0], m[1]
		var name string
		multi := false
		if m[2] != -1 {
			name = text[m[2]:m[3]]
			multi = true
		} else {
			name = text[m[4]:m[5]]
		}
		tokens = append(tokens, MetaToken{
			Name:      name,
			Multi:     multi,
			Anonymous: name == "_",
			Start:     start,
			End:       end,
		})
	}
	return tokens
}

// substituteMetavars replaces every `$$$NAME`/`$NAME`/`$_` occurrence in
// text with a unique placeholder identifier, returning the substituted text
// and the ordered list of descriptors (one per occurrence).
func substituteMetavars(text string) (string, []metaDescriptor) {
	tokens := ScanMetavars(text)
	if len(tokens) == 0 {
		return text, nil
	}

	var b strings.Builder
	descriptors := make([]metaDescriptor, 0, len(tokens))
	last := 0
	for i, t := range tokens {
		b.WriteString(text[last:t.Start])

		placeholder := fmt.Sprintf("sgmeta%dholder", i)
		b.WriteString(placeholder)
		descriptors = append(descriptors, metaDescriptor{
			Placeholder: placeholder,
			Name:        t.Name,
			Multi:       t.Multi,
			Anonymous:   t.Anonymous,
		})
		last = t.End
	}
	b.WriteString(text[last:])

	return b.String(), descriptors
}

// unwrapSingleChild descends through wrapper nodes (a node whose only named
// child is itself the entire meaningful content, e.g. `source_file` ->
// `expression_statement` -> `call_expression`) to find the smallest node
// that represents the pattern's actual content.
func unwrapSingleChild(n *sitter.Node) *sitter.Node {
	cur := n
	for cur.NamedChildCount() == 1 {
		next := cur.NamedChild(0)
		if next == nil {
			return cur
		}
		cur = next
	}
	return cur
}

// findByKind returns the first node (pre-order, including unnamed nodes) of
// the given kind, or nil.
func findByKind(n *sitter.Node, kind string) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == kind {
		return n
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if found := findByKind(n.Child(i), kind); found != nil {
			return found
		}
	}
	return nil
}

// convert builds a PNode tree from a tree-sitter subtree, recognizing
// metavariable placeholders by their leaf text.
func convert(n *sitter.Node, source []byte, byPlaceholder map[string]metaDescriptor) *PNode {
	if n == nil {
		return nil
	}

	text := n.Content(source)
	if n.ChildCount() == 0 {
		if d, ok := byPlaceholder[text]; ok {
			return &PNode{
				Kind:      n.Type(),
				IsNamed:   n.IsNamed(),
				Text:      text,
				IsMeta:    true,
				MetaName:  d.Name,
				MetaMulti: d.Multi,
				MetaAnon:  d.Anonymous,
			}
		}
	}

	childCount := int(n.ChildCount())
	children := make([]*PNode, 0, childCount)
	for i := 0; i < childCount; i++ {
		children = append(children, convert(n.Child(i), source, byPlaceholder))
	}

	return &PNode{
		Kind:     n.Type(),
		IsNamed:  n.IsNamed(),
		Text:     text,
		Children: children,
	}
}

func collectNames(n *PNode, into map[string]bool) {
	if n == nil {
		return
	}
	if n.IsMeta && !n.MetaAnon && n.MetaName != "" {
		into[n.MetaName] = true
	}
	for _, c := range n.Children {
		collectNames(c, into)
	}
}
