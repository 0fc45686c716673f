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
	"fmt"
	"os"

	"github.com/kraklabs/sgrep/internal/errors"
	"github.com/kraklabs/sgrep/internal/output"
	"github.com/kraklabs/sgrep/internal/ui"
	"github.com/kraklabs/sgrep/pkg/matcher"
	"github.com/kraklabs/sgrep/pkg/pipeline"
)

// fatal classifies err into a UserError and exits, respecting --json.
func fatal(err error, globals GlobalFlags) {
	errors.FatalError(err, globals.JSON)
}

// printMatches renders single-snippet matches either as JSON or as a
// line:col / binding summary per match.
func printMatches(matches []*matcher.Match, globals GlobalFlags) {
	if globals.JSON {
		if err := output.JSON(matches); err != nil {
			fatal(err, globals)
		}
		return
	}
	if len(matches) == 0 {
		ui.Info("no matches")
		return
	}
	for _, m := range matches {
		printMatch(m)
	}
	fmt.Printf("%s matches\n", ui.CountText(len(matches)))
}

func printMatch(m *matcher.Match) {
	fmt.Printf("%s:%d:%d: %s\n", ui.DimText("match"), m.StartLine, m.StartCol+1, firstLine(m.Text))
	for name, b := range m.Vars {
		fmt.Printf("    %s = %s\n", name, firstLine(b.Text))
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i] + "…"
		}
	}
	return s
}

// printSearchResult renders a pipeline.SearchResult, the shared shape of
// file-search and rule-search output.
func printSearchResult(result *pipeline.SearchResult, globals GlobalFlags) {
	if globals.JSON {
		if err := output.JSON(result); err != nil {
			fatal(err, globals)
		}
		return
	}

	total := 0
	for _, f := range result.Files {
		for _, m := range f.Matches {
			total++
			fmt.Printf("%s:%d:%d: %s\n", f.Path, m.StartLine, m.StartCol+1, firstLine(m.Text))
		}
	}
	for _, s := range result.Skipped {
		ui.Warningf("skipped %s (%s)", s.Path, s.Reason)
	}
	ui.Successf("%d matches across %d files scanned", total, result.FilesScanned)
	if !result.Cursor.IsComplete {
		ui.Infof("more results available; resume after %s", result.Cursor.LastFilePath)
	}
}

// printReplaceResult renders a pipeline.ReplaceResult, the shared shape of
// file-replace and rule-replace output.
func printReplaceResult(result *pipeline.ReplaceResult, globals GlobalFlags) {
	if globals.JSON {
		if err := output.JSON(result); err != nil {
			fatal(err, globals)
		}
		return
	}

	applied := 0
	for _, f := range result.Files {
		if f.Applied {
			applied++
			verb := "replaced"
			if f.DryRun {
				verb = "would replace"
			}
			fmt.Printf("%s %s (%d matches)\n", verb, f.Path, f.MatchCount)
		}
	}
	for _, s := range result.Skipped {
		ui.Warningf("skipped %s (%s)", s.Path, s.Reason)
	}
	ui.Successf("%d files changed out of %d scanned", applied, result.FilesScanned)
	if !result.Cursor.IsComplete {
		ui.Infof("more results available; resume after %s", result.Cursor.LastFilePath)
	}
}

func exitUsage(usage func()) {
	usage()
	os.Exit(1)
}
