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
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleFile is one persisted rule document.
type RuleFile struct {
	ID       string `yaml:"id"`
	Language string `yaml:"language"`
	Message  string `yaml:"message,omitempty"`
	Severity string `yaml:"severity,omitempty"`
	Rule     *Rule  `yaml:"rule"`
	Fix      string `yaml:"fix,omitempty"`

	// Path is the file this document was loaded from; not part of the
	// persisted format.
	Path string `yaml:"-"`
}

var validSeverities = map[string]bool{"error": true, "warning": true, "info": true, "hint": true}

// Validate checks the required-field and enum invariants of a rule document.
func (f *RuleFile) Validate() error {
	if f.ID == "" {
		return &ValidationError{Reason: "rule file is missing required field \"id\""}
	}
	if f.Language == "" {
		return &ValidationError{Reason: fmt.Sprintf("rule %q is missing required field \"language\"", f.ID)}
	}
	if f.Rule == nil {
		return &ValidationError{Reason: fmt.Sprintf("rule %q is missing required field \"rule\"", f.ID)}
	}
	if f.Severity != "" && !validSeverities[f.Severity] {
		return &ValidationError{Reason: fmt.Sprintf("rule %q has invalid severity %q", f.ID, f.Severity)}
	}
	return nil
}

// ParseRuleFile decodes one YAML or JSON rule document (JSON is valid YAML)
// and validates it.
func ParseRuleFile(data []byte, path string) (*RuleFile, error) {
	var f RuleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("%s: %s", path, err)}
	}
	f.Path = path
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Entry is a catalog slot: the winning rule file and the path it was
// loaded from.
type Entry struct {
	File   *RuleFile
	Origin string
}

// DuplicateDiagnostic records a rule ID that appeared in more than one file;
// never fatal.
type DuplicateDiagnostic struct {
	ID              string
	WinningPath     string
	SuppressedPaths []string
}

// Catalog is the immutable-once-loaded mapping from rule ID to RuleFile.
// The zero value is an empty catalog ready for LoadDirs.
type Catalog struct {
	entries map[string]*Entry
	order   []string
	dupes   []DuplicateDiagnostic
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: map[string]*Entry{}}
}

// LoadDirs scans dirs in the given order; within a directory, entries sort
// by path. The first occurrence of any rule ID wins; later occurrences are
// recorded as DuplicateDiagnostics, never as errors.
func (c *Catalog) LoadDirs(dirs []string) error {
	for _, dir := range dirs {
		paths, err := ruleFilePaths(dir)
		if err != nil {
			return fmt.Errorf("rule: scanning %s: %w", dir, err)
		}
		for _, p := range paths {
			data, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("rule: reading %s: %w", p, err)
			}
			rf, err := ParseRuleFile(data, p)
			if err != nil {
				return err
			}
			c.add(rf)
		}
	}
	if err := c.DetectCycles(); err != nil {
		return err
	}
	return nil
}

func (c *Catalog) add(rf *RuleFile) {
	existing, ok := c.entries[rf.ID]
	if !ok {
		c.entries[rf.ID] = &Entry{File: rf, Origin: rf.Path}
		c.order = append(c.order, rf.ID)
		return
	}
	for i := range c.dupes {
		if c.dupes[i].ID == rf.ID {
			c.dupes[i].SuppressedPaths = append(c.dupes[i].SuppressedPaths, rf.Path)
			return
		}
	}
	c.dupes = append(c.dupes, DuplicateDiagnostic{
		ID:              rf.ID,
		WinningPath:     existing.File.Path,
		SuppressedPaths: []string{rf.Path},
	})
}

func ruleFilePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" || ext == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}

// Get resolves a rule ID to its winning RuleFile.
func (c *Catalog) Get(id string) (*RuleFile, error) {
	e, ok := c.entries[id]
	if !ok {
		return nil, &ValidationError{Reason: fmt.Sprintf("no rule with id %q in catalog", id)}
	}
	return e.File, nil
}

// List returns every rule in the catalog, in load order.
func (c *Catalog) List() []*RuleFile {
	out := make([]*RuleFile, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id].File)
	}
	return out
}

// Diagnostics returns every duplicate-ID diagnostic recorded during LoadDirs.
func (c *Catalog) Diagnostics() []DuplicateDiagnostic {
	return c.dupes
}

// DetectCycles walks every rule's `matches(id)` references looking for a
// cycle; the references must form a DAG.
func (c *Catalog) DetectCycles() error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := map[string]int{}

	var visit func(id string, chain []string) error
	visit = func(id string, chain []string) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return &CycleError{Chain: append(append([]string{}, chain...), id)}
		}
		state[id] = visiting
		defer func() { state[id] = done }()

		e, ok := c.entries[id]
		if !ok {
			return nil
		}
		for _, ref := range collectMatchesRefs(e.File.Rule) {
			if err := visit(ref, append(chain, id)); err != nil {
				return err
			}
		}
		return nil
	}

	for _, id := range c.order {
		if err := visit(id, nil); err != nil {
			return err
		}
	}
	return nil
}

func collectMatchesRefs(r *Rule) []string {
	if r == nil {
		return nil
	}
	var out []string
	if r.Kind == KindMatches {
		out = append(out, r.RefID)
	}
	for _, c := range r.Children {
		out = append(out, collectMatchesRefs(c)...)
	}
	out = append(out, collectMatchesRefs(r.Inner)...)
	out = append(out, collectMatchesRefs(r.Self)...)
	out = append(out, collectMatchesRefs(r.Other)...)
	return out
}
