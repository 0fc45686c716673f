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

package replace

import (
	"bytes"
	"fmt"
	"sort"
)

// Edit is one replacement of a byte range in a source buffer.
type Edit struct {
	StartByte   uint32
	EndByte     uint32
	Replacement string
}

// OverlapError reports two edits whose byte ranges overlap.
type OverlapError struct {
	A, B Edit
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("replace: overlapping edits [%d,%d) and [%d,%d)",
		e.A.StartByte, e.A.EndByte, e.B.StartByte, e.B.EndByte)
}

// Rewrite applies edits to source, returning the rewritten buffer. Edits are
// applied right-to-left (highest offset first) against the original buffer
// so that earlier edits' offsets never shift out from under them; edits
// must be non-overlapping.
func Rewrite(source []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		out := make([]byte, len(source))
		copy(out, source)
		return out, nil
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartByte < sorted[j].StartByte })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].StartByte < sorted[i-1].EndByte {
			return nil, &OverlapError{A: sorted[i-1], B: sorted[i]}
		}
	}

	result := make([]byte, len(source))
	copy(result, source)

	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		if e.StartByte > e.EndByte || int(e.EndByte) > len(result) {
			return nil, fmt.Errorf("replace: edit [%d,%d) out of bounds for %d-byte buffer", e.StartByte, e.EndByte, len(result))
		}
		var buf bytes.Buffer
		buf.Write(result[:e.StartByte])
		buf.WriteString(e.Replacement)
		buf.Write(result[e.EndByte:])
		result = buf.Bytes()
	}

	return result, nil
}
