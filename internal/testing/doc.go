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

// Package testing provides fixture helpers for sgrep's pkg/sandbox and
// pkg/rule tests: a temp-directory-backed sandbox, file/rule fixture
// writers, and a rule catalog loader, all following the t.Helper()/
// t.TempDir()/t.Cleanup idiom used throughout this module's own tests.
//
// # Quick Start
//
//	func TestMyFeature(t *testing.T) {
//	    sb := testing.SetupSandbox(t)
//	    testing.WriteFixtureFile(t, sb, "a.js", "console.log(1);")
//
//	    // Run pipeline.Search/Replace against sb...
//	}
//
// # Rule Fixtures
//
//	dir := t.TempDir()
//	testing.WriteRuleFixture(t, dir, "no-console", `
//	id: no-console
//	language: javascript
//	rule:
//	  pattern: console.log($X)
//	`)
//	cat := testing.LoadCatalogFixture(t, dir)
//	rf, err := cat.Get("no-console")
package testing
