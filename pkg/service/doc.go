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

// Package service wires pkg/lang, pkg/pattern, pkg/matcher, pkg/rule,
// pkg/replace, pkg/sandbox, pkg/pipeline, and pkg/embed into a single
// operation set: search, file search, replace, file replace, rule search,
// rule replace, rule validation, AST generation, listing supported
// languages, and rule catalog management (list/get/create/delete).
//
// Service is the sole point at which a *sandbox.Sandbox is constructed from
// caller-supplied roots; every internal layer it calls already assumes its
// paths were validated.
package service
