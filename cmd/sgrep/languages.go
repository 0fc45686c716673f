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

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/sgrep/internal/output"
	"github.com/kraklabs/sgrep/pkg/service"
)

func runListLanguages(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("languages", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Println("Usage: sgrep languages [--json]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	svc, err := service.New(service.Config{})
	if err != nil {
		fatal(err, globals)
	}
	names := svc.ListLanguages()

	if globals.JSON {
		if err := output.JSON(names); err != nil {
			fatal(err, globals)
		}
		return
	}
	for _, name := range names {
		fmt.Println(name)
	}
}
