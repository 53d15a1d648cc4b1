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

// Package trust is the quality gate in front of the trusted zone. Record
// sets are schema-checked and rejected whole on any violation; media is
// decode-gated and normalized to fixed geometry before upload.
package trust

import (
	"sort"

	"github.com/PelleWhitebear/gamelake/internal/records"
)

var steamRequiredKeys = []string{
	"name", "release_date", "required_age", "price", "dlc_count",
	"detailed_description", "about_the_game", "header_image", "support_url",
	"support_email", "windows", "mac", "linux", "metacritic_score",
	"metacritic_url", "achievements", "recommendations", "notes",
	"supported_languages", "full_audio_languages", "packages", "developers",
	"publishers", "categories", "genres", "screenshots", "movies",
}

var steamspyRequiredKeys = []string{
	"user_score", "score_rank", "positive", "negative", "estimated_owners",
	"average_playtime_forever", "average_playtime_2weeks",
	"median_playtime_forever", "median_playtime_2weeks", "discount",
	"peak_ccu", "tags",
}

// RequiredKeys returns the schema for a source's record sets, or nil for
// sources without an enumerated schema.
func RequiredKeys(source string) []string {
	switch source {
	case "steam":
		return steamRequiredKeys
	case "steamspy":
		return steamspyRequiredKeys
	default:
		return nil
	}
}

// Issue names one record that fails the schema and the keys it is missing.
type Issue struct {
	RecordID    string
	MissingKeys []string
}

// Validate checks every record for presence of the required keys and
// returns one issue per failing record, ordered by record ID. An empty
// result means the set passes the gate.
func Validate(set records.Set, requiredKeys []string) []Issue {
	var issues []Issue
	for id, rec := range set {
		var missing []string
		for _, key := range requiredKeys {
			if _, ok := rec[key]; !ok {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			issues = append(issues, Issue{RecordID: id, MissingKeys: missing})
		}
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].RecordID < issues[j].RecordID })
	return issues
}
