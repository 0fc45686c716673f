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
	"github.com/kraklabs/sgrep/pkg/lang"
	"github.com/kraklabs/sgrep/pkg/sandbox"
)

// Search walks the sandboxed glob traversal, per-file size/decode handling,
// match accumulation up to opts.MaxResults, and cursor pagination shared by
// file-search and rule-search.
func Search(registry *lang.Registry, sb *sandbox.Sandbox, opts Options, matchFn MatchFunc) (*SearchResult, error) {
	if opts.Cursor.IsComplete {
		return &SearchResult{Cursor: opts.Cursor}, nil
	}

	paths, err := candidatePaths(sb, opts.Glob, opts.Cursor)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{Cursor: Cursor{LastFilePath: opts.Cursor.LastFilePath}}
	totalMatches := 0

	for i, path := range paths {
		lf := load(registry, path, opts)
		result.FilesScanned++
		if opts.Progress != nil {
			opts.Progress(result.FilesScanned, len(paths))
		}
		if lf.skip != nil {
			result.Skipped = append(result.Skipped, *lf.skip)
			continue
		}

		matches, skip := matchFile(registry, lf, opts, matchFn)
		if skip != nil {
			result.Skipped = append(result.Skipped, *skip)
			continue
		}
		if len(matches) == 0 {
			continue
		}

		annotated := annotate(lf.content, matches, opts.contextBefore(), opts.contextAfter())
		result.Files = append(result.Files, &FileResult{
			Path:        path,
			Language:    lf.l.Name,
			ContentHash: lf.hash,
			Matches:     annotated,
		})
		totalMatches += len(matches)

		if opts.MaxResults > 0 && totalMatches >= opts.MaxResults {
			result.Cursor = Cursor{LastFilePath: path, IsComplete: i == len(paths)-1}
			return result, nil
		}
	}

	result.Cursor = Cursor{LastFilePath: lastPath(paths, opts.Cursor.LastFilePath), IsComplete: true}
	return result, nil
}

func lastPath(paths []string, fallback string) string {
	if len(paths) == 0 {
		return fallback
	}
	return paths[len(paths)-1]
}
