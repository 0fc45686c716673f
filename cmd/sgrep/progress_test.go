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
	"bytes"
	"os"
	"testing"
)

func TestNewProgressConfig(t *testing.T) {
	tests := []struct {
		name            string
		globals         GlobalFlags
		expectedEnabled bool
		expectedNoColor bool
	}{
		{
			name:            "default flags - progress disabled in test (not a TTY)",
			globals:         GlobalFlags{},
			expectedEnabled: false,
			expectedNoColor: false,
		},
		{
			name:            "quiet mode - progress disabled",
			globals:         GlobalFlags{Quiet: true},
			expectedEnabled: false,
			expectedNoColor: false,
		},
		{
			name:            "JSON mode - progress disabled (quiet auto-set by main)",
			globals:         GlobalFlags{JSON: true, Quiet: true},
			expectedEnabled: false,
			expectedNoColor: false,
		},
		{
			name:            "noColor flag propagates to config",
			globals:         GlobalFlags{NoColor: true},
			expectedEnabled: false,
			expectedNoColor: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewProgressConfig(tt.globals)
			if cfg.Enabled != tt.expectedEnabled {
				t.Errorf("NewProgressConfig().Enabled = %v, want %v", cfg.Enabled, tt.expectedEnabled)
			}
			if cfg.NoColor != tt.expectedNoColor {
				t.Errorf("NewProgressConfig().NoColor = %v, want %v", cfg.NoColor, tt.expectedNoColor)
			}
			if cfg.Writer != os.Stderr {
				t.Error("NewProgressConfig().Writer should be os.Stderr")
			}
		})
	}
}

func TestNewProgressBar_DisabledReturnsNil(t *testing.T) {
	cfg := ProgressConfig{Enabled: false}
	if bar := NewProgressBar(cfg, 100, "Test"); bar != nil {
		t.Error("NewProgressBar() should return nil when disabled")
	}
}

func TestNewProgressBar_EnabledIsUsable(t *testing.T) {
	var buf bytes.Buffer
	cfg := ProgressConfig{Enabled: true, Writer: &buf}
	bar := NewProgressBar(cfg, 100, "Test")
	if bar == nil {
		t.Fatal("NewProgressBar() should return non-nil when enabled")
	}
	_ = bar.Set(50)
	_ = bar.Finish()
}

func TestNewSpinner_DisabledReturnsNil(t *testing.T) {
	cfg := ProgressConfig{Enabled: false}
	if spinner := NewSpinner(cfg, "Test"); spinner != nil {
		t.Error("NewSpinner() should return nil when disabled")
	}
}

func TestFileTreeProgress_AdvancesByDelta(t *testing.T) {
	var buf bytes.Buffer
	cfg := ProgressConfig{Enabled: true, Writer: &buf}
	bar := NewSpinner(cfg, "Scanning")
	progress := fileTreeProgress(bar)

	progress(3, 0)
	progress(7, 0)
	_ = bar.Finish()
}

func TestFileTreeProgress_NilBarIsNoop(t *testing.T) {
	progress := fileTreeProgress(nil)
	progress(10, 10)
}
