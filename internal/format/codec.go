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

package format

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/clbanning/mxj/v2"
	"gopkg.in/yaml.v3"

	"github.com/PelleWhitebear/gamelake/internal/records"
)

// decodeRecords parses a record set from any of the encodings sources are
// allowed to land in. The returned set is keyed by game ID regardless of
// the input encoding.
func decodeRecords(body []byte, ext string) (records.Set, error) {
	switch strings.ToLower(ext) {
	case "json":
		return records.UnmarshalSet(body)
	case "yaml", "yml":
		return decodeYAML(body)
	case "xml":
		return decodeXML(body)
	case "csv":
		return decodeCSV(body)
	default:
		return nil, fmt.Errorf("unsupported record-set encoding %q", ext)
	}
}

func decodeYAML(body []byte) (records.Set, error) {
	var raw map[string]map[string]any
	if err := yaml.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	set := make(records.Set, len(raw))
	for id, rec := range raw {
		set[id] = records.Record(rec)
	}
	return set, nil
}

// decodeXML expects <games><game id="..."><field>...</field></game></games>
// or any equivalent two-level document: one wrapping root, one element per
// record keyed by its id attribute.
func decodeXML(body []byte) (records.Set, error) {
	m, err := mxj.NewMapXml(body)
	if err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	if len(m) != 1 {
		return nil, fmt.Errorf("decode xml: expected one root element, found %d", len(m))
	}

	set := records.Set{}
	for _, rootVal := range m {
		root, ok := rootVal.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("decode xml: root element holds no records")
		}
		for _, entryVal := range root {
			for _, entry := range asSlice(entryVal) {
				rec, ok := entry.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("decode xml: record element is not a map")
				}
				id, ok := rec["-id"].(string)
				if !ok || id == "" {
					return nil, fmt.Errorf("decode xml: record element missing id attribute")
				}
				out := make(records.Record, len(rec))
				for k, v := range rec {
					if k == "-id" {
						continue
					}
					out[strings.TrimPrefix(k, "-")] = v
				}
				set[id] = out
			}
		}
	}
	return set, nil
}

// decodeCSV expects a header row; the first column holds the record key
// and every other column becomes a string-valued field.
func decodeCSV(body []byte) (records.Set, error) {
	r := csv.NewReader(bytes.NewReader(body))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	if len(rows) < 1 || len(rows[0]) < 2 {
		return nil, fmt.Errorf("decode csv: missing header row")
	}
	header := rows[0]

	set := make(records.Set, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("decode csv: row has %d fields, header has %d", len(row), len(header))
		}
		rec := make(records.Record, len(header)-1)
		for i := 1; i < len(header); i++ {
			rec[header[i]] = row[i]
		}
		set[row[0]] = rec
	}
	return set, nil
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return []any{v}
}
