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

package service

import (
	"log/slog"
	"time"

	"github.com/kraklabs/sgrep/internal/metrics"
	"github.com/kraklabs/sgrep/pkg/lang"
	"github.com/kraklabs/sgrep/pkg/pattern"
	"github.com/kraklabs/sgrep/pkg/rule"
)

// Service is the façade over the sgrep core. It is safe for concurrent use:
// the pattern cache is internally synchronized and the rule catalog is
// swapped atomically on Reload.
type Service struct {
	registry *lang.Registry
	cache    *pattern.Cache
	logger   *slog.Logger

	ruleDirs []string
	catalog  *rule.Catalog
}

// Config carries the construction-time inputs for New.
type Config struct {
	Registry *lang.Registry
	// CacheCapacity bounds the shared pattern LRU; <= 0 uses pattern.NewCache's
	// default.
	CacheCapacity int
	// RuleDirs is the ordered list of directories the rule catalog loads
	// from; later directories lose duplicate-id ties. May be empty, in
	// which case rule search/replace/list/get operate on an empty catalog
	// until CreateRule adds a directory.
	RuleDirs []string
	Logger   *slog.Logger
}

// New constructs a Service and performs the initial catalog load from
// cfg.RuleDirs. A missing or empty RuleDirs is not an error: it simply
// yields an empty catalog.
func New(cfg Config) (*Service, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = lang.NewRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		registry: registry,
		cache:    pattern.NewCache(cfg.CacheCapacity),
		logger:   logger,
		ruleDirs: cfg.RuleDirs,
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rebuilds the rule catalog from the configured rule directories and
// swaps it in atomically. Callers use this after CreateRule/DeleteRule, or
// after editing rule files on disk directly.
func (s *Service) Reload() error {
	start := time.Now()
	cat := rule.NewCatalog()
	if len(s.ruleDirs) > 0 {
		if err := cat.LoadDirs(s.ruleDirs); err != nil {
			metrics.RecordCatalogLoad(0, 0, err)
			return err
		}
	}
	s.catalog = cat
	metrics.RecordCatalogLoad(time.Since(start).Seconds(), len(cat.List()), nil)
	return nil
}

// ListLanguages returns the names of every registered language, sorted.
func (s *Service) ListLanguages() []string {
	return s.registry.Names()
}
