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

package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/sgrep/pkg/embed"
	"github.com/kraklabs/sgrep/pkg/lang"
	"github.com/kraklabs/sgrep/pkg/matcher"
	"github.com/kraklabs/sgrep/pkg/sandbox"
)

// loadedFile is one file's bytes plus the language resolution needed before
// matching, or the reason it was skipped.
type loadedFile struct {
	path    string
	content []byte
	hash    string
	l       *lang.Language
	skip    *SkippedFile
}

// candidatePaths resolves the glob, applies the sandbox, sorts, and drops
// every path at or before the cursor's resumption point.
func candidatePaths(sb *sandbox.Sandbox, glob string, cursor Cursor) ([]string, error) {
	paths, err := sb.Resolve(glob)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	if cursor.LastFilePath == "" {
		return paths, nil
	}
	idx := sort.SearchStrings(paths, cursor.LastFilePath)
	if idx < len(paths) && paths[idx] == cursor.LastFilePath {
		idx++
	}
	return paths[idx:], nil
}

// load reads, size-caps, UTF-8 sanitizes, and resolves the language for one
// file path. A non-nil skip means the file should be recorded and skipped,
// never treated as a batch error.
func load(registry *lang.Registry, path string, opts Options) *loadedFile {
	info, err := os.Stat(path)
	if err != nil {
		return &loadedFile{path: path, skip: &SkippedFile{Path: path, Reason: ReasonDecodeError, Detail: err.Error()}}
	}
	if info.Size() > opts.maxFileSize() {
		return &loadedFile{path: path, skip: &SkippedFile{Path: path, Reason: ReasonSizeExceeded, Detail: "file exceeds max_file_size"}}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return &loadedFile{path: path, skip: &SkippedFile{Path: path, Reason: ReasonDecodeError, Detail: err.Error()}}
	}
	hash := sha256.Sum256(raw)

	var l *lang.Language
	var ok bool
	if opts.LanguageOverride != "" {
		l, err = registry.LanguageForName(opts.LanguageOverride)
		ok = err == nil
	} else {
		l, ok = registry.LanguageForPath(path)
	}
	if !ok || l == nil {
		return &loadedFile{path: path, skip: &SkippedFile{Path: path, Reason: ReasonUnsupportedLang, Detail: "no language resolved for file"}}
	}

	content := raw
	if !utf8.Valid(raw) {
		content = []byte(strings.ToValidUTF8(string(raw), "�"))
	}

	return &loadedFile{path: path, content: content, hash: hex.EncodeToString(hash[:]), l: l}
}

// matchFile runs matchFn against one loaded file, routing through
// pkg/embed when the caller requested an embedded-language pattern.
func matchFile(registry *lang.Registry, lf *loadedFile, opts Options, matchFn MatchFunc) ([]*matcher.Match, *SkippedFile) {
	if opts.EmbeddedLang != "" {
		results, err := embed.ExtractAndMatch(registry, lf.l, opts.EmbeddedLang, lf.content, func(embedded *lang.Language, body []byte) ([]*matcher.Match, error) {
			root, err := parseSource(embedded, body)
			if err != nil {
				return nil, err
			}
			return matchFn(embedded, root, body)
		})
		if err != nil {
			return nil, &SkippedFile{Path: lf.path, Reason: ReasonEmbeddedExtractor, Detail: err.Error()}
		}
		var matches []*matcher.Match
		for _, r := range results {
			if r.Err != nil {
				slog.Default().Warn("pipeline.embed.region_error", "path", lf.path, "err", r.Err)
				continue
			}
			matches = append(matches, r.Matches...)
		}
		return matches, nil
	}

	if lf.l.Grammar == nil {
		return nil, &SkippedFile{Path: lf.path, Reason: ReasonUnsupportedLang, Detail: "language has no grammar and no embedded_lang was requested"}
	}
	root, err := parseSource(lf.l, lf.content)
	if err != nil {
		return nil, &SkippedFile{Path: lf.path, Reason: ReasonParseError, Detail: err.Error()}
	}
	matches, err := matchFn(lf.l, root, lf.content)
	if err != nil {
		return nil, &SkippedFile{Path: lf.path, Reason: ReasonMatchError, Detail: err.Error()}
	}
	return matches, nil
}

func parseSource(l *lang.Language, source []byte) (*sitter.Node, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(l.Grammar)
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	return tree.RootNode(), nil
}

// annotate attaches context lines to every match, clipped to file
// boundaries.
func annotate(content []byte, matches []*matcher.Match, before, after int) []*AnnotatedMatch {
	var lines []string
	if before > 0 || after > 0 {
		lines = strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	}

	out := make([]*AnnotatedMatch, len(matches))
	for i, m := range matches {
		am := &AnnotatedMatch{Match: m}
		if before > 0 {
			start := m.StartLine - 1 - before
			if start < 0 {
				start = 0
			}
			am.Before = lines[start : m.StartLine-1]
		}
		if after > 0 {
			end := m.EndLine + after
			if end > len(lines) {
				end = len(lines)
			}
			if m.EndLine < end {
				am.After = lines[m.EndLine:end]
			}
		}
		out[i] = am
	}
	return out
}
