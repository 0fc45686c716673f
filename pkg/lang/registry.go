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

package lang

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// EmbeddedHost describes one way a host language's source can contain a
// region written in another language, and the pattern used to locate it.
//
// ExtractionTemplate is itself a pattern string in the host language, with
// a `$$$BODY` hole capturing the embedded region's raw text (the Markdown
// fence template also has a `$LANG` hole for the fence's language tag).
type EmbeddedHost struct {
	// EmbeddedLang is the language name of the extracted region.
	EmbeddedLang string

	// ExtractionTemplate is a host-language pattern, e.g. `<script>$$$BODY</script>`.
	ExtractionTemplate string

	// Selector names the host node kind that holds the embedded region.
	// pkg/embed locates regions with a regex built from ExtractionTemplate
	// and does not read it.
	Selector string
}

// Language is an opaque handle identifying a tree-sitter grammar.
type Language struct {
	// Name is the canonical, lower-case language identifier (e.g. "javascript").
	Name string

	// Extensions lists file extensions (with leading dot) mapped to this language.
	Extensions []string

	// Grammar is the tree-sitter grammar used to parse source in this language.
	Grammar *sitter.Language

	// Embedded lists the embedded-language extraction rules when this
	// language hosts foreign-language regions. Empty for ordinary languages.
	Embedded []EmbeddedHost
}

// ErrUnknownLanguage is returned by LanguageForName when no language is
// registered under the given name.
type ErrUnknownLanguage struct {
	Name string
}

func (e *ErrUnknownLanguage) Error() string {
	return fmt.Sprintf("unknown language: %q", e.Name)
}

// Registry maps language names and file extensions to Language handles.
// A Registry is safe for concurrent use; once built, it is typically never
// mutated again, but Register is synchronized in case callers extend it.
type Registry struct {
	mu        sync.RWMutex
	byName    map[string]*Language
	extToName map[string]string
}

// NewRegistry builds a registry pre-populated with the languages this
// service ships support for: Go, JavaScript, TypeScript, Python, Rust, Java,
// plus two embedded hosts (HTML and Markdown).
func NewRegistry() *Registry {
	r := &Registry{
		byName:    make(map[string]*Language),
		extToName: make(map[string]string),
	}

	r.Register(&Language{
		Name:       "go",
		Extensions: []string{".go"},
		Grammar:    golang.GetLanguage(),
	})
	r.Register(&Language{
		Name:       "javascript",
		Extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
		Grammar:    javascript.GetLanguage(),
	})
	r.Register(&Language{
		Name:       "typescript",
		Extensions: []string{".ts", ".tsx"},
		Grammar:    typescript.GetLanguage(),
	})
	r.Register(&Language{
		Name:       "python",
		Extensions: []string{".py", ".pyi"},
		Grammar:    python.GetLanguage(),
	})
	r.Register(&Language{
		Name:       "rust",
		Extensions: []string{".rs"},
		Grammar:    rust.GetLanguage(),
	})
	r.Register(&Language{
		Name:       "java",
		Extensions: []string{".java"},
		Grammar:    java.GetLanguage(),
	})

	// Embedded hosts: markup/documentation languages that carry foreign
	// code regions. These are registered without their own Grammar since
	// the host's own grammar (html/markdown) is out of scope to vendor;
	// extraction instead works off a lightweight text-region scan (see
	// pkg/embed), but the host entries still need to exist so that
	// EmbeddedHosts(lang) reports the embedded-language mapping.
	r.Register(&Language{
		Name:       "html",
		Extensions: []string{".html", ".htm"},
		Embedded: []EmbeddedHost{
			{EmbeddedLang: "javascript", ExtractionTemplate: "<script>$$$BODY</script>", Selector: "raw_text"},
			{EmbeddedLang: "javascript", ExtractionTemplate: "<script type=\"text/javascript\">$$$BODY</script>", Selector: "raw_text"},
		},
	})
	r.Register(&Language{
		Name:       "markdown",
		Extensions: []string{".md", ".markdown"},
		Embedded: []EmbeddedHost{
			{EmbeddedLang: "*", ExtractionTemplate: "```$LANG\n$$$BODY\n```", Selector: "fenced_code_block"},
		},
	})

	return r
}

// Register adds or replaces a language entry, indexing it by name and by
// every extension it claims.
func (r *Registry) Register(l *Language) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(l.Name)
	r.byName[name] = l
	for _, ext := range l.Extensions {
		r.extToName[strings.ToLower(ext)] = name
	}
}

// LanguageForName resolves a language by its canonical name (case-insensitive).
func (r *Registry) LanguageForName(name string) (*Language, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, &ErrUnknownLanguage{Name: name}
	}
	return l, nil
}

// LanguageForPath infers a language from a file path's extension. It returns
// false if no registered language claims the extension.
func (r *Registry) LanguageForPath(path string) (*Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil, false
	}

	r.mu.RLock()
	name, ok := r.extToName[ext]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	l, err := r.LanguageForName(name)
	if err != nil {
		return nil, false
	}
	return l, true
}

// EmbeddedHosts reports the embedded-language extraction rules for l. Nil or
// empty means l does not host foreign-language regions.
func (r *Registry) EmbeddedHosts(l *Language) []EmbeddedHost {
	if l == nil {
		return nil
	}
	return l.Embedded
}

// Names returns every registered language name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
