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

package service

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

// ASTResult is the output of generate_ast: a debug-printable dump of the
// parse tree plus the distinct node kinds it contains, so a caller
// exploring an unfamiliar grammar can see both the shape and the
// vocabulary to write a pattern or rule against (supplemented feature,
// grounded on examples/test_ast_structure.rs's GenerateAstResult{ast,
// node_kinds}).
type ASTResult struct {
	Dump      string
	NodeKinds []string
}

// GenerateAST parses source as language and returns its tree-sitter
// s-expression dump alongside the sorted set of distinct node kinds that
// appear in it.
func (s *Service) GenerateAST(language, source string) (*ASTResult, error) {
	l, err := s.registry.LanguageForName(language)
	if err != nil {
		return nil, err
	}
	root, err := parseSource(l, []byte(source))
	if err != nil {
		return nil, err
	}

	kindSet := map[string]bool{}
	collectKinds(root, kindSet)
	kinds := make([]string, 0, len(kindSet))
	for k := range kindSet {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	return &ASTResult{Dump: root.String(), NodeKinds: kinds}, nil
}

func collectKinds(n *sitter.Node, into map[string]bool) {
	if n == nil {
		return
	}
	into[n.Type()] = true
	for i := 0; i < int(n.ChildCount()); i++ {
		collectKinds(n.Child(i), into)
	}
}
