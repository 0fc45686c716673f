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

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/sgrep/internal/bootstrap"
)

func TestResolveRoots_PrefersExplicitArgs(t *testing.T) {
	dir := t.TempDir()
	roots, err := resolveRoots(&bootstrap.ProjectConfig{Roots: []string{"/configured"}}, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, roots)
}

func TestResolveRoots_RejectsBlankArg(t *testing.T) {
	_, err := resolveRoots(nil, []string{""})
	require.Error(t, err)
}

func TestResolveRoots_FallsBackToProjectConfig(t *testing.T) {
	dir := t.TempDir()
	roots, err := resolveRoots(&bootstrap.ProjectConfig{Roots: []string{dir}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, roots)
}

func TestReadSource_ReadsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snippet.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	src, err := readSource(path)
	require.NoError(t, err)
	assert.Equal(t, "package main\n", src)
}
