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

package trust

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PelleWhitebear/gamelake/internal/records"
)

func steamRecord() records.Record {
	rec := records.Record{}
	for _, key := range steamRequiredKeys {
		rec[key] = "x"
	}
	return rec
}

func TestRequiredKeys(t *testing.T) {
	assert.Len(t, RequiredKeys("steam"), 27)
	assert.Len(t, RequiredKeys("steamspy"), 12)
	assert.Nil(t, RequiredKeys("unknown"))
}

func TestValidatePasses(t *testing.T) {
	set := records.Set{"620": steamRecord(), "730": steamRecord()}
	assert.Empty(t, Validate(set, steamRequiredKeys))
}

func TestValidateReportsMissingKeys(t *testing.T) {
	bad := steamRecord()
	delete(bad, "developers")
	delete(bad, "price")
	set := records.Set{"620": steamRecord(), "730": bad}

	issues := Validate(set, steamRequiredKeys)
	require.Len(t, issues, 1)
	assert.Equal(t, "730", issues[0].RecordID)
	assert.ElementsMatch(t, []string{"developers", "price"}, issues[0].MissingKeys)
}

func TestValidateOrdersIssuesByRecordID(t *testing.T) {
	set := records.Set{}
	for _, id := range []string{"30", "10", "20"} {
		rec := steamRecord()
		delete(rec, "name")
		set[id] = rec
	}

	issues := Validate(set, steamRequiredKeys)
	require.Len(t, issues, 3)
	assert.Equal(t, "10", issues[0].RecordID)
	assert.Equal(t, "20", issues[1].RecordID)
	assert.Equal(t, "30", issues[2].RecordID)
}

func TestValidateExtraKeysAreFine(t *testing.T) {
	rec := steamRecord()
	rec["undocumented_extra"] = 42
	assert.Empty(t, Validate(records.Set{"620": rec}, steamRequiredKeys))
}

func TestValidateNullValueCountsAsPresent(t *testing.T) {
	// The gate checks key presence, not value semantics.
	rec := steamRecord()
	rec["notes"] = nil
	assert.Empty(t, Validate(records.Set{"620": rec}, steamRequiredKeys))
}
