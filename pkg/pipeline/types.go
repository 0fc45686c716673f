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
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/sgrep/pkg/lang"
	"github.com/kraklabs/sgrep/pkg/matcher"
)

// DefaultMaxFileSize is used when an Options value leaves MaxFileSize unset.
const DefaultMaxFileSize = 4 << 20 // 4 MiB

// Cursor is the opaque, JSON-serializable pagination token returned by a
// paged file walk. Two cursors are equal iff they represent the same
// resumption point; an IsComplete=true cursor always yields an empty page.
type Cursor struct {
	LastFilePath string `json:"last_file_path"`
	IsComplete   bool   `json:"is_complete"`
}

// MatchFunc runs the caller's pattern or rule evaluation against one parsed
// file (or embedded region) and returns its matches. Supplying this as a
// callback keeps pkg/pipeline independent of pkg/pattern and pkg/rule.
type MatchFunc func(l *lang.Language, root *sitter.Node, source []byte) ([]*matcher.Match, error)

// ReplaceFunc computes the replacement text for one match; the caller
// typically closes over a fix template and feeds it through
// pkg/replace.Substitute with the match's bindings.
type ReplaceFunc func(m *matcher.Match) (string, error)

// ProgressFunc is invoked after each file is scanned, for long tree walks.
type ProgressFunc func(filesScanned, filesTotal int)

// AnnotatedMatch carries a Match plus the context lines requested by the
// caller, clipped to file boundaries.
type AnnotatedMatch struct {
	*matcher.Match
	Before []string
	After  []string
}

// SkippedFile records a per-file failure or size-cap skip; never fatal to
// the batch.
type SkippedFile struct {
	Path   string
	Reason string
	Detail string
}

const (
	ReasonSizeExceeded      = "size_exceeded"
	ReasonUnsupportedLang   = "unsupported_language"
	ReasonDecodeError       = "decode_error"
	ReasonParseError        = "parse_error"
	ReasonMatchError        = "match_error"
	ReasonEmbeddedExtractor = "embedded_extractor_error"
	ReasonReplaceError      = "replace_error"
	ReasonWriteError        = "write_error"
)

// Options carries the shared file-search/file-replace/rule-search/
// rule-replace inputs.
type Options struct {
	Glob             string
	LanguageOverride string
	// EmbeddedLang, when set, selects the embedded-language pattern to
	// extract instead of matching the host language directly.
	EmbeddedLang string

	MaxResults  int
	MaxFileSize int64
	Cursor      Cursor

	ContextBefore int
	ContextAfter  int
	ContextLines  int

	Progress ProgressFunc
}

func (o Options) maxFileSize() int64 {
	if o.MaxFileSize > 0 {
		return o.MaxFileSize
	}
	return DefaultMaxFileSize
}

func (o Options) contextBefore() int {
	if o.ContextBefore > 0 {
		return o.ContextBefore
	}
	return o.ContextLines
}

func (o Options) contextAfter() int {
	if o.ContextAfter > 0 {
		return o.ContextAfter
	}
	return o.ContextLines
}

// FileResult is one file's accumulated matches.
type FileResult struct {
	Path        string
	Language    string
	ContentHash string
	Matches     []*AnnotatedMatch
}

// SearchResult is the page returned by Search.
type SearchResult struct {
	Files        []*FileResult
	Skipped      []SkippedFile
	Cursor       Cursor
	FilesScanned int
}

// FileEdit is one file's replacement outcome.
type FileEdit struct {
	Path        string
	MatchCount  int
	BeforeHash  string
	AfterHash   string
	Applied     bool
	DryRun      bool
	RewrittenOK bool
}

// ReplaceResult is the page returned by Replace.
type ReplaceResult struct {
	Files        []*FileEdit
	Skipped      []SkippedFile
	Cursor       Cursor
	FilesScanned int
}
