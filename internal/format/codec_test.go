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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecordsJSON(t *testing.T) {
	set, err := decodeRecords([]byte(`{"620": {"name": "Portal 2"}}`), "json")
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Equal(t, "Portal 2", set["620"]["name"])
}

func TestDecodeRecordsYAML(t *testing.T) {
	body := []byte("\"620\":\n  name: Portal 2\n  price: 9.99\n\"730\":\n  name: Counter-Strike 2\n")
	set, err := decodeRecords(body, "yaml")
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Equal(t, "Portal 2", set["620"]["name"])
	assert.Equal(t, 9.99, set["620"]["price"])
}

func TestDecodeRecordsCSV(t *testing.T) {
	body := []byte("app_id,name,price\n620,Portal 2,9.99\n730,Counter-Strike 2,0\n")
	set, err := decodeRecords(body, "csv")
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Equal(t, "Portal 2", set["620"]["name"])
	assert.Equal(t, "9.99", set["620"]["price"])
	assert.NotContains(t, set["620"], "app_id", "the key column does not repeat inside the record")
}

func TestDecodeRecordsCSVRagged(t *testing.T) {
	_, err := decodeRecords([]byte("app_id,name\n620\n"), "csv")
	assert.Error(t, err)
}

func TestDecodeRecordsXML(t *testing.T) {
	body := []byte(`<games><game id="620"><name>Portal 2</name></game><game id="730"><name>Counter-Strike 2</name></game></games>`)
	set, err := decodeRecords(body, "xml")
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.Equal(t, "Portal 2", set["620"]["name"])
}

func TestDecodeRecordsXMLSingleRecord(t *testing.T) {
	set, err := decodeRecords([]byte(`<games><game id="620"><name>Portal 2</name></game></games>`), "xml")
	require.NoError(t, err)
	require.Len(t, set, 1)
}

func TestDecodeRecordsXMLMissingID(t *testing.T) {
	_, err := decodeRecords([]byte(`<games><game><name>Portal 2</name></game></games>`), "xml")
	assert.Error(t, err)
}

func TestDecodeRecordsUnknownEncoding(t *testing.T) {
	_, err := decodeRecords([]byte("whatever"), "parquet")
	assert.Error(t, err)
}

func TestDecodeRecordsCorruptInput(t *testing.T) {
	for _, ext := range []string{"json", "xml", "csv"} {
		_, err := decodeRecords([]byte("\x00\x01 not structured"), ext)
		assert.Error(t, err, "ext %s", ext)
	}
}
