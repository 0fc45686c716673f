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

// Package bootstrap discovers a project's .sgrep/config.yaml by walking up
// from a starting directory, the way version-control tooling locates a
// repository root.
//
// # Project Config
//
//	// .sgrep/config.yaml
//	rule_dirs:
//	  - rules
//	  - vendor/rules
//	roots:
//	  - src
//	glob: "*.go"
//
//	cfg, err := bootstrap.Discover(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ruleDirs := cfg.EffectiveRuleDirs() // nil cfg is fine; falls back to env/defaults
package bootstrap
