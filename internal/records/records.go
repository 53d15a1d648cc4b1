// Copyright (C) 2025 GameLake Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package records defines the record-set data model shared by the zones
// and its single canonical serialization.
package records

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one catalog entry. Records stay schemaless maps so the quality
// gate can check key presence explicitly instead of relying on struct
// decoding to paper over missing fields.
type Record = map[string]any

// Set maps an application ID to its record.
type Set = map[string]Record

// MarshalCanonical serializes v in the one canonical encoding every zone
// agrees on: JSON with lexically sorted object keys, four-space
// indentation, and no HTML escaping. Two calls over equal input produce
// byte-identical output.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("canonical marshal: %w", err)
	}
	// Encode appends a newline; the canonical form ends at the closing brace.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalSet parses a serialized record set.
func UnmarshalSet(body []byte) (Set, error) {
	var set Set
	if err := json.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("unmarshal record set: %w", err)
	}
	return set, nil
}
