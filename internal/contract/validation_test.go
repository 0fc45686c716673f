// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxFileSize_DefaultsWhenUnset(t *testing.T) {
	assert.Equal(t, int64(DefaultMaxFileSize), MaxFileSize())
}

func TestMaxFileSize_HonorsEnvOverride(t *testing.T) {
	t.Setenv("SGREP_MAX_FILE_SIZE_BYTES", "1024")
	assert.Equal(t, int64(1024), MaxFileSize())
}

func TestMaxFileSize_IgnoresInvalidOrNonPositiveValue(t *testing.T) {
	t.Setenv("SGREP_MAX_FILE_SIZE_BYTES", "not-a-number")
	assert.Equal(t, int64(DefaultMaxFileSize), MaxFileSize())

	t.Setenv("SGREP_MAX_FILE_SIZE_BYTES", "-5")
	assert.Equal(t, int64(DefaultMaxFileSize), MaxFileSize())
}

func TestRuleDir_EmptyWhenUnset(t *testing.T) {
	t.Setenv("SGREP_RULE_DIR", "")
	assert.Equal(t, "", RuleDir())
}

func TestValidateRoots_RejectsEmptyList(t *testing.T) {
	result := ValidateRoots(nil)
	assert.False(t, result.OK)
}

func TestValidateRoots_RejectsBlankEntry(t *testing.T) {
	result := ValidateRoots([]string{"/a", ""})
	assert.False(t, result.OK)
}

func TestValidateRoots_AcceptsNonEmptyList(t *testing.T) {
	result := ValidateRoots([]string{"/a", "/b"})
	assert.True(t, result.OK)
}
