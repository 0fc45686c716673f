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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kraklabs/sgrep/pkg/lang"
	"github.com/kraklabs/sgrep/pkg/replace"
	"github.com/kraklabs/sgrep/pkg/sandbox"
)

// Replace walks the file tree shared by file-replace/rule-replace: it
// locates matches the same way Search does, computes edits via replaceFn,
// and either writes the result atomically (rename-over-temp in the same
// directory) or, in dry-run mode, leaves the file untouched. Per-file edits
// are all-or-nothing: a failure computing or applying any one edit skips
// the whole file rather than partially rewriting it.
func Replace(registry *lang.Registry, sb *sandbox.Sandbox, opts Options, matchFn MatchFunc, replaceFn ReplaceFunc, dryRun bool) (*ReplaceResult, error) {
	if opts.Cursor.IsComplete {
		return &ReplaceResult{Cursor: opts.Cursor}, nil
	}

	paths, err := candidatePaths(sb, opts.Glob, opts.Cursor)
	if err != nil {
		return nil, err
	}

	result := &ReplaceResult{Cursor: Cursor{LastFilePath: opts.Cursor.LastFilePath}}
	filesChanged := 0

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

		edits := make([]replace.Edit, len(matches))
		editErr := false
		for j, m := range matches {
			text, err := replaceFn(m)
			if err != nil {
				result.Skipped = append(result.Skipped, SkippedFile{Path: path, Reason: ReasonReplaceError, Detail: err.Error()})
				editErr = true
				break
			}
			edits[j] = replace.Edit{StartByte: m.StartByte, EndByte: m.EndByte, Replacement: text}
		}
		if editErr {
			continue
		}

		rewritten, err := replace.Rewrite(lf.content, edits)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedFile{Path: path, Reason: ReasonReplaceError, Detail: err.Error()})
			continue
		}
		afterHash := sha256.Sum256(rewritten)

		fe := &FileEdit{
			Path:        path,
			MatchCount:  len(matches),
			BeforeHash:  lf.hash,
			AfterHash:   hex.EncodeToString(afterHash[:]),
			DryRun:      dryRun,
			RewrittenOK: true,
		}

		if !dryRun {
			if err := atomicWrite(path, rewritten); err != nil {
				result.Skipped = append(result.Skipped, SkippedFile{Path: path, Reason: ReasonWriteError, Detail: err.Error()})
				continue
			}
			fe.Applied = true
		}

		result.Files = append(result.Files, fe)
		filesChanged++

		if opts.MaxResults > 0 && filesChanged >= opts.MaxResults {
			result.Cursor = Cursor{LastFilePath: path, IsComplete: i == len(paths)-1}
			return result, nil
		}
	}

	result.Cursor = Cursor{LastFilePath: lastPath(paths, opts.Cursor.LastFilePath), IsComplete: true}
	return result, nil
}

// atomicWrite writes content to a temp file in path's directory, then
// renames it over path, so a reader never observes a partially written file.
func atomicWrite(path string, content []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".sgrep-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, info.Mode()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("pipeline: preserving mode for %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
