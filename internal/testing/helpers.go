// Copyright 2025 KrakLabs
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

package testing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/sgrep/pkg/rule"
	"github.com/kraklabs/sgrep/pkg/sandbox"
)

// SetupSandbox creates a *sandbox.Sandbox rooted at a fresh temporary
// directory. The directory is removed automatically when the test
// finishes (t.TempDir()'s own cleanup).
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    sb := testing.SetupSandbox(t)
//	    testing.WriteFixtureFile(t, sb, "a.js", "console.log(1);")
//	    // Run pipeline.Search/Replace against sb...
//	}
func SetupSandbox(t *testing.T) *sandbox.Sandbox {
	t.Helper()

	sb, err := sandbox.New([]string{t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create test sandbox: %v", err)
	}
	return sb
}

// WriteFixtureFile writes content to relPath under sb's first root,
// creating any parent directories, and returns the absolute path written.
//
// Example:
//
//	sb := testing.SetupSandbox(t)
//	path := testing.WriteFixtureFile(t, sb, "nested/a.go", "package a\n")
func WriteFixtureFile(t *testing.T, sb *sandbox.Sandbox, relPath, content string) string {
	t.Helper()

	roots := sb.Roots()
	if len(roots) == 0 {
		t.Fatalf("sandbox has no roots")
	}

	path := filepath.Join(roots[0], relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture file: %v", err)
	}
	return path
}

// WriteRuleFixture writes a rule YAML document to name (appending ".yaml"
// if the caller omitted it) under dir, and returns the path written. Pair
// with rule.NewCatalog().LoadDirs([]string{dir}) to build a catalog from
// fixture rules.
//
// Example:
//
//	dir := t.TempDir()
//	testing.WriteRuleFixture(t, dir, "no-console", `
//	id: no-console
//	language: javascript
//	rule:
//	  pattern: console.log($X)
//	`)
func WriteRuleFixture(t *testing.T, dir, name, content string) string {
	t.Helper()

	if filepath.Ext(name) == "" {
		name += ".yaml"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write rule fixture: %v", err)
	}
	return path
}

// LoadCatalogFixture builds a *rule.Catalog from the rule YAML files
// already written to dirs, failing the test on any load error.
//
// Example:
//
//	dir := t.TempDir()
//	testing.WriteRuleFixture(t, dir, "no-console", ruleYAML)
//	cat := testing.LoadCatalogFixture(t, dir)
//	rf, err := cat.Get("no-console")
func LoadCatalogFixture(t *testing.T, dirs ...string) *rule.Catalog {
	t.Helper()

	cat := rule.NewCatalog()
	if err := cat.LoadDirs(dirs); err != nil {
		t.Fatalf("failed to load rule catalog fixture: %v", err)
	}
	return cat
}
