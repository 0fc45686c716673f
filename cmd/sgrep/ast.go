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
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/sgrep/internal/output"
	"github.com/kraklabs/sgrep/pkg/service"
)

func runGenerateAST(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("ast", flag.ExitOnError)
	lang := fs.String("lang", "", "Language the snippet is parsed as (required)")
	codeFile := fs.String("code-file", "-", "File to read the snippet from (\"-\" for stdin)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sgrep ast --lang <language> [options]

Parses a snippet (read from --code-file or stdin) and prints its
tree-sitter parse tree alongside the distinct node kinds it contains, for
exploring an unfamiliar grammar before writing a pattern or rule.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *lang == "" {
		exitUsage(fs.Usage)
	}

	source, err := readSource(*codeFile)
	if err != nil {
		fatal(err, globals)
	}

	svc, err := service.New(service.Config{})
	if err != nil {
		fatal(err, globals)
	}
	result, err := svc.GenerateAST(*lang, source)
	if err != nil {
		fatal(err, globals)
	}

	if globals.JSON {
		if err := output.JSON(result); err != nil {
			fatal(err, globals)
		}
		return
	}
	fmt.Println(result.Dump)
	fmt.Printf("\nnode kinds (%d): %s\n", len(result.NodeKinds), strings.Join(result.NodeKinds, ", "))
}
