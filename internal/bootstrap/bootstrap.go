// Copyright 2025 KrakLabs
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

package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/sgrep/internal/contract"
)

// configFileName is the project config sgrep looks for while walking up from
// a starting directory.
const configFileName = ".sgrep/config.yaml"

// ProjectConfig is the decoded contents of a .sgrep/config.yaml file plus
// the directory it was discovered in.
type ProjectConfig struct {
	// RuleDirs lists directories (relative to Root, unless absolute) that
	// rule.Catalog.LoadDirs should scan.
	RuleDirs []string `yaml:"rule_dirs"`

	// Roots lists the default search/replace roots when a caller doesn't
	// supply its own; relative entries are resolved against Root.
	Roots []string `yaml:"roots"`

	// Glob is decoded from the config file's glob key. No operation reads
	// it; the CLI's --glob flag carries its own default.
	Glob string `yaml:"glob"`

	// Root is the directory configFileName was found in, not a YAML field.
	Root string `yaml:"-"`
}

// Discover walks up from startDir looking for .sgrep/config.yaml, the way
// version-control tooling locates a repository root. It returns nil, nil if
// no config file is found anywhere between startDir and the filesystem root
// — the absence of a project config is not an error, callers fall back to
// SGREP_* environment variables and explicit flags (internal/contract).
func Discover(startDir string) (*ProjectConfig, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("resolve start dir: %w", err)
	}

	for {
		candidate := filepath.Join(dir, configFileName)
		data, err := os.ReadFile(candidate)
		if err == nil {
			cfg, err := parseProjectConfig(data)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", candidate, err)
			}
			cfg.Root = dir
			cfg.resolveRelativePaths()
			return cfg, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", candidate, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func parseProjectConfig(data []byte) (*ProjectConfig, error) {
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ProjectConfig) resolveRelativePaths() {
	for i, d := range c.RuleDirs {
		if !filepath.IsAbs(d) {
			c.RuleDirs[i] = filepath.Join(c.Root, d)
		}
	}
	for i, r := range c.Roots {
		if !filepath.IsAbs(r) {
			c.Roots[i] = filepath.Join(c.Root, r)
		}
	}
}

// EffectiveRuleDirs merges the discovered project config's rule directories
// with internal/contract's SGREP_RULE_DIR override, which always wins when
// set: an explicit environment override is assumed deliberate, not merely a
// default.
func (c *ProjectConfig) EffectiveRuleDirs() []string {
	if dir := contract.RuleDir(); dir != "" {
		return []string{dir}
	}
	if c == nil {
		return nil
	}
	return c.RuleDirs
}

// EffectiveRoots returns the project config's default roots, or the current
// working directory when neither a config nor an override is available.
func (c *ProjectConfig) EffectiveRoots() ([]string, error) {
	if c != nil && len(c.Roots) > 0 {
		return c.Roots, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return []string{cwd}, nil
}
