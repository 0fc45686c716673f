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

package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ViolationError reports that a path or glob could not be resolved within
// any of a Sandbox's permitted roots.
type ViolationError struct {
	Glob   string
	Reason string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("sandbox: %q: %s", e.Glob, e.Reason)
}

// Sandbox holds the set of root directories a glob is permitted to resolve
// within. Roots are canonicalized at construction time so later containment
// checks compare like paths.
type Sandbox struct {
	roots []string
}

// New canonicalizes roots (absolute, symlink-resolved where the path
// already exists on disk, cleaned) and returns a Sandbox scoped to them.
// At least one root is required.
func New(roots []string) (*Sandbox, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("sandbox: at least one root is required")
	}
	canon := make([]string, 0, len(roots))
	for _, r := range roots {
		c, err := canonicalize(r)
		if err != nil {
			return nil, fmt.Errorf("sandbox: root %q: %w", r, err)
		}
		canon = append(canon, c)
	}
	return &Sandbox{roots: canon}, nil
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return filepath.Clean(real), nil
	}
	// Root need not already exist (a rule's sandboxed tree may be created
	// later); fall back to the cleaned absolute path.
	return filepath.Clean(abs), nil
}

// Resolve expands userGlob (which may use `*`, `?`, character classes, and
// `**` via doublestar) into the sorted, absolute list of paths it matches,
// rejecting the glob outright if it contains a traversal segment or, once
// resolved, would escape every configured root.
func (s *Sandbox) Resolve(userGlob string) ([]string, error) {
	if userGlob == "" {
		return nil, &ViolationError{Glob: userGlob, Reason: "empty glob"}
	}
	if hasTraversalSegment(userGlob) {
		return nil, &ViolationError{Glob: userGlob, Reason: "path traversal segment \"..\" is not permitted"}
	}

	var candidateRoots []string
	var relPattern string

	if filepath.IsAbs(userGlob) {
		cleaned := filepath.Clean(userGlob)
		root, rel, ok := containingRoot(s.roots, cleaned)
		if !ok {
			return nil, &ViolationError{Glob: userGlob, Reason: "absolute path does not fall within any configured root"}
		}
		candidateRoots = []string{root}
		relPattern = rel
	} else {
		candidateRoots = s.roots
		relPattern = filepath.ToSlash(userGlob)
	}

	var matches []string
	for _, root := range candidateRoots {
		hits, err := doublestar.Glob(os.DirFS(root), relPattern)
		if err != nil {
			return nil, &ViolationError{Glob: userGlob, Reason: fmt.Sprintf("malformed glob: %s", err)}
		}
		for _, h := range hits {
			abs := filepath.Join(root, filepath.FromSlash(h))
			if _, _, ok := containingRoot(s.roots, abs); !ok {
				continue
			}
			matches = append(matches, abs)
		}
	}

	sort.Strings(matches)
	return matches, nil
}

// hasTraversalSegment reports whether any "/"-delimited segment of glob is
// exactly "..", independent of how doublestar itself would interpret it.
func hasTraversalSegment(glob string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(glob), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// containingRoot reports the configured root that is a path-prefix of abs,
// along with abs's slash-separated path relative to that root.
func containingRoot(roots []string, abs string) (root, rel string, ok bool) {
	for _, r := range roots {
		if abs == r {
			return r, ".", true
		}
		if strings.HasPrefix(abs, r+string(filepath.Separator)) {
			rel, err := filepath.Rel(r, abs)
			if err != nil {
				continue
			}
			return r, filepath.ToSlash(rel), true
		}
	}
	return "", "", false
}

// Roots returns the Sandbox's canonicalized root directories.
func (s *Sandbox) Roots() []string {
	out := make([]string, len(s.roots))
	copy(out, s.roots)
	return out
}
