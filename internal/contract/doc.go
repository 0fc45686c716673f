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

// Package contract provides process-wide configuration constants and
// request validation for sgrep.
//
// # Configuration via Environment
//
// Defaults can be overridden via environment variables, read lazily on each
// call rather than cached at process start:
//
//	export SGREP_MAX_FILE_SIZE_BYTES=8388608  # 8 MiB
//	export SGREP_MAX_RESULTS=500
//	export SGREP_CACHE_CAPACITY=512
//	export SGREP_CONCURRENCY=8
//	export SGREP_RULE_DIR=/etc/sgrep/rules
//
// An unset or non-positive value falls back to the package's Default*
// constant.
package contract
