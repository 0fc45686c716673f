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

package embed

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kraklabs/sgrep/pkg/lang"
	"github.com/kraklabs/sgrep/pkg/matcher"
	"github.com/kraklabs/sgrep/pkg/pattern"
)

// Region is one embedded-language span located in a host buffer.
type Region struct {
	EmbeddedLang string
	BodyStart    uint32
	BodyEnd      uint32
	Body         string
}

// RegionResult pairs a Region with the result of matching inside it. Err is
// set when parsing or matching that one region failed; it never aborts the
// other regions in the file.
type RegionResult struct {
	Region  *Region
	Matches []*matcher.Match
	Err     error
}

// FindRegions locates every region of host's extraction templates whose
// embedded language equals embeddedLangName, in document order. Host
// languages have no vendored grammar of their own, so extraction works by
// turning each ExtractionTemplate into a regular expression over the raw
// source rather than by tree-sitter parsing.
func FindRegions(registry *lang.Registry, host *lang.Language, embeddedLangName string, source []byte) ([]*Region, error) {
	var regions []*Region
	for _, eh := range registry.EmbeddedHosts(host) {
		if eh.EmbeddedLang != "*" && eh.EmbeddedLang != embeddedLangName {
			continue
		}

		re, tokens, err := compileExtractionRegex(eh.ExtractionTemplate)
		if err != nil {
			return nil, fmt.Errorf("embed: extraction template %q: %w", eh.ExtractionTemplate, err)
		}

		for _, m := range re.FindAllSubmatchIndex(source, -1) {
			bodyStart, bodyEnd, langTag, ok := extractBody(tokens, m, source)
			if !ok {
				continue
			}
			if eh.EmbeddedLang == "*" && !strings.EqualFold(langTag, embeddedLangName) {
				continue
			}
			regions = append(regions, &Region{
				EmbeddedLang: embeddedLangName,
				BodyStart:    uint32(bodyStart),
				BodyEnd:      uint32(bodyEnd),
				Body:         string(source[bodyStart:bodyEnd]),
			})
		}
	}
	return regions, nil
}

// ExtractAndMatch locates every region of the embedded language in source
// and runs matchFn (a caller-supplied pattern or rule evaluation) against
// each region's extracted text independently, remapping any matches back to
// byte offsets, line, and column in the outer buffer.
func ExtractAndMatch(
	registry *lang.Registry,
	host *lang.Language,
	embeddedLangName string,
	source []byte,
	matchFn func(embedded *lang.Language, body []byte) ([]*matcher.Match, error),
) ([]*RegionResult, error) {
	embeddedLang, err := registry.LanguageForName(embeddedLangName)
	if err != nil {
		return nil, err
	}

	regions, err := FindRegions(registry, host, embeddedLangName, source)
	if err != nil {
		return nil, err
	}

	results := make([]*RegionResult, 0, len(regions))
	for _, rgn := range regions {
		inner, err := matchFn(embeddedLang, []byte(rgn.Body))
		res := &RegionResult{Region: rgn, Err: err}
		if err == nil {
			res.Matches = remap(rgn, inner, source)
		}
		results = append(results, res)
	}
	return results, nil
}

// remap translates matches found in a region's extracted text (offsets
// relative to the region) into offsets, line, and column in the outer host
// buffer.
func remap(rgn *Region, inner []*matcher.Match, outer []byte) []*matcher.Match {
	out := make([]*matcher.Match, 0, len(inner))
	for _, m := range inner {
		outerStart := rgn.BodyStart + m.StartByte
		outerEnd := rgn.BodyStart + m.EndByte
		startLine, startCol := lineCol(outer, int(outerStart))
		endLine, endCol := lineCol(outer, int(outerEnd))

		vars := make(map[string]*matcher.Binding, len(m.Vars))
		for name, b := range m.Vars {
			vars[name] = &matcher.Binding{
				Text:      b.Text,
				Seq:       b.Seq,
				SeqKinds:  b.SeqKinds,
				StartByte: rgn.BodyStart + b.StartByte,
				EndByte:   rgn.BodyStart + b.EndByte,
			}
		}

		out = append(out, &matcher.Match{
			StartLine: startLine,
			StartCol:  startCol,
			EndLine:   endLine,
			EndCol:    endCol,
			StartByte: outerStart,
			EndByte:   outerEnd,
			Text:      m.Text,
			Vars:      vars,
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
	return line, offset - lastNL - 1
}

// compileExtractionRegex turns a host-language extraction template (itself
// written with pattern metavariable syntax, e.g. "<script>$$$BODY</script>"
// or "```$LANG\n$$$BODY\n```") into a regular expression, tracking which
// submatch group corresponds to which metavariable.
func compileExtractionRegex(template string) (*regexp.Regexp, []pattern.MetaToken, error) {
	tokens := pattern.ScanMetavars(template)
	if len(tokens) == 0 {
		return nil, nil, fmt.Errorf("extraction template has no metavariable holes")
	}

	var sb strings.Builder
	sb.WriteString("(?s)")
	last := 0
	for _, t := range tokens {
		sb.WriteString(regexp.QuoteMeta(template[last:t.Start]))
		if t.Multi {
			sb.WriteString("(.*?)")
		} else {
			sb.WriteString("([^\\s\"'<>`]*)")
		}
		last = t.End
	}
	sb.WriteString(regexp.QuoteMeta(template[last:]))

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, nil, err
	}
	return re, tokens, nil
}

// extractBody reads the BODY (and, if present, LANG) submatch byte ranges
// out of one regex match against the source.
func extractBody(tokens []pattern.MetaToken, match []int, source []byte) (bodyStart, bodyEnd int, langTag string, ok bool) {
	bodyStart, bodyEnd = -1, -1
	for i, t := range tokens {
		groupStart, groupEnd := match[2+2*i], match[2+2*i+1]
		if groupStart < 0 {
			continue
		}
		switch t.Name {
		case "BODY":
			bodyStart, bodyEnd = groupStart, groupEnd
		case "LANG":
			langTag = string(source[groupStart:groupEnd])
		}
	}
	if bodyStart < 0 {
		return 0, 0, "", false
	}
	return bodyStart, bodyEnd, langTag, true
}
