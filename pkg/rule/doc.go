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

// Package rule implements the compositional rule language: a sealed
// tagged-union rule tree, a YAML/JSON rule-file loader, a multi-directory
// catalog with first-seen-wins duplicate resolution and cycle detection for
// `matches(id)` references, and an evaluator that composes atomic
// pattern/kind/regex matches with logical (all/any/not) and relational
// (inside/has/follows/precedes) operators.
package rule
