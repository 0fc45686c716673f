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
	"io"
	"os"

	"github.com/kraklabs/sgrep/internal/bootstrap"
	"github.com/kraklabs/sgrep/internal/contract"
	"github.com/kraklabs/sgrep/internal/ui"
	"github.com/kraklabs/sgrep/pkg/service"
)

func initColors(noColor bool) {
	ui.InitColors(noColor)
}

// loadProject discovers the nearest .sgrep/config.yaml above the current
// working directory. A nil, nil return means no project file was found;
// callers fall back to cwd-relative defaults via ProjectConfig's own
// nil-receiver-safe EffectiveRuleDirs/EffectiveRoots.
func loadProject() (*bootstrap.ProjectConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return bootstrap.Discover(cwd)
}

// newService builds the service façade from the discovered project
// configuration plus any --rule-dir override.
func newService(proj *bootstrap.ProjectConfig, extraRuleDir string) (*service.Service, error) {
	ruleDirs := proj.EffectiveRuleDirs()
	if extraRuleDir != "" {
		ruleDirs = append(ruleDirs, extraRuleDir)
	}
	return service.New(service.Config{
		RuleDirs:      ruleDirs,
		CacheCapacity: contract.CacheCapacity(),
	})
}

// resolveRoots prefers explicit positional root arguments over the
// project's configured roots, falling back to the working directory when
// neither is set (bootstrap.ProjectConfig.EffectiveRoots's own policy).
func resolveRoots(proj *bootstrap.ProjectConfig, args []string) ([]string, error) {
	if len(args) > 0 {
		if vr := contract.ValidateRoots(args); !vr.OK {
			return nil, fmt.Errorf("%s", vr.Message)
		}
		return args, nil
	}
	return proj.EffectiveRoots()
}

// readSource returns the contents of path, or stdin when path is "-" or
// empty.
func readSource(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
