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
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/sgrep/internal/output"
	"github.com/kraklabs/sgrep/internal/ui"
	"github.com/kraklabs/sgrep/pkg/rule"
)

// runRule dispatches sgrep's rule-catalog management subcommands: list,
// get, create, delete.
func runRule(args []string, globals GlobalFlags, ruleDir string) {
	usage := func() {
		fmt.Fprintf(os.Stderr, `Usage: sgrep rule <list|get|create|delete> [options]

Subcommands:
  list            List every rule currently loaded
  get <id>        Show one rule's document
  create <file>   Persist a rule document into the catalog and reload it
  delete <id>     Remove a rule's backing file and reload the catalog
`)
	}
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	proj, err := loadProject()
	if err != nil {
		fatal(err, globals)
	}
	svc, err := newService(proj, ruleDir)
	if err != nil {
		fatal(err, globals)
	}

	switch args[0] {
	case "list":
		rules := svc.ListRule()
		if globals.JSON {
			if err := output.JSON(rules); err != nil {
				fatal(err, globals)
			}
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tLANGUAGE\tSEVERITY\tPATH")
		for _, rf := range rules {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rf.ID, rf.Language, rf.Severity, rf.Path)
		}
		_ = w.Flush()

	case "get":
		if len(args) < 2 {
			usage()
			os.Exit(1)
		}
		rf, err := svc.GetRule(args[1])
		if err != nil {
			fatal(err, globals)
		}
		if globals.JSON {
			if err := output.JSON(rf); err != nil {
				fatal(err, globals)
			}
			return
		}
		fmt.Printf("id:       %s\n", rf.ID)
		fmt.Printf("language: %s\n", rf.Language)
		if rf.Message != "" {
			fmt.Printf("message:  %s\n", rf.Message)
		}
		if rf.Severity != "" {
			fmt.Printf("severity: %s\n", rf.Severity)
		}
		if rf.Fix != "" {
			fmt.Printf("fix:      %s\n", rf.Fix)
		}
		fmt.Printf("path:     %s\n", rf.Path)

	case "create":
		fs := flag.NewFlagSet("rule create", flag.ExitOnError)
		dir := fs.String("dir", "", "Directory the rule file is written into (defaults to the first configured rule directory)")
		if err := fs.Parse(args[1:]); err != nil {
			os.Exit(1)
		}
		if fs.NArg() == 0 {
			usage()
			os.Exit(1)
		}

		targetDir := *dir
		if targetDir == "" {
			dirs := proj.EffectiveRuleDirs()
			if len(dirs) == 0 {
				fatal(fmt.Errorf("no rule directory configured; pass --dir or set SGREP_RULE_DIR"), globals)
			}
			targetDir = dirs[0]
		}

		data, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fatal(err, globals)
		}
		rf, err := rule.ParseRuleFile(data, fs.Arg(0))
		if err != nil {
			fatal(err, globals)
		}
		if err := svc.CreateRule(targetDir, rf); err != nil {
			fatal(err, globals)
		}
		ui.Successf("created rule %q in %s", rf.ID, targetDir)

	case "delete":
		if len(args) < 2 {
			usage()
			os.Exit(1)
		}
		if err := svc.DeleteRule(args[1]); err != nil {
			fatal(err, globals)
		}
		ui.Successf("deleted rule %q", args[1])

	default:
		usage()
		os.Exit(1)
	}
}
