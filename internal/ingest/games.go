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

package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/PelleWhitebear/gamelake/internal/records"
)

func getString(m records.Record, key string) string {
	s, _ := m[key].(string)
	return s
}

func getBool(m records.Record, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func getMap(m records.Record, key string) records.Record {
	mm, _ := m[key].(map[string]any)
	return mm
}

func getSlice(m records.Record, key string) []any {
	s, _ := m[key].([]any)
	return s
}

// toInt coerces JSON numbers and numeric strings.
func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		i, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(n), "+"))
		return i
	default:
		return 0
	}
}

// ParseSteamGame flattens a raw appdetails payload into the catalog record
// shape all downstream zones expect.
func ParseSteamGame(app records.Record) records.Record {
	game := records.Record{}

	game["name"] = strings.TrimSpace(getString(app, "name"))

	game["release_date"] = ""
	if rd := getMap(app, "release_date"); rd != nil && !getBool(rd, "coming_soon") {
		game["release_date"] = getString(rd, "date")
	}

	game["required_age"] = 0
	if v, ok := app["required_age"]; ok {
		game["required_age"] = toInt(v)
	}

	game["price"] = 0.0
	if !getBool(app, "is_free") {
		if po := getMap(app, "price_overview"); po != nil {
			game["price"] = priceToFloat(getString(po, "final_formatted"))
		}
	}

	game["dlc_count"] = len(getSlice(app, "dlc"))
	game["detailed_description"] = sanitizeText(strings.TrimSpace(getString(app, "detailed_description")))
	game["about_the_game"] = sanitizeText(strings.TrimSpace(getString(app, "about_the_game")))
	game["short_description"] = sanitizeText(strings.TrimSpace(getString(app, "short_description")))
	game["reviews"] = sanitizeText(strings.TrimSpace(getString(app, "reviews")))
	game["header_image"] = strings.TrimSpace(getString(app, "header_image"))
	game["website"] = strings.TrimSpace(getString(app, "website"))

	game["support_url"] = ""
	game["support_email"] = ""
	if si := getMap(app, "support_info"); si != nil {
		game["support_url"] = strings.TrimSpace(getString(si, "url"))
		game["support_email"] = strings.TrimSpace(getString(si, "email"))
	}

	platforms := getMap(app, "platforms")
	game["windows"] = getBool(platforms, "windows")
	game["mac"] = getBool(platforms, "mac")
	game["linux"] = getBool(platforms, "linux")

	game["metacritic_score"] = 0
	game["metacritic_url"] = ""
	if mc := getMap(app, "metacritic"); mc != nil {
		game["metacritic_score"] = toInt(mc["score"])
		game["metacritic_url"] = getString(mc, "url")
	}

	game["achievements"] = 0
	if ach := getMap(app, "achievements"); ach != nil {
		game["achievements"] = toInt(ach["total"])
	}

	game["recommendations"] = 0
	if rec := getMap(app, "recommendations"); rec != nil {
		game["recommendations"] = toInt(rec["total"])
	}

	game["notes"] = ""
	if cd := getMap(app, "content_descriptors"); cd != nil {
		game["notes"] = sanitizeText(getString(cd, "notes"))
	}

	supported := []string{}
	fullAudio := []string{}
	if langs := getString(app, "supported_languages"); langs != "" {
		langs = tagRe.ReplaceAllString(langs, "")
		langs = strings.ReplaceAll(langs, "languages with full audio support", "")
		for _, lang := range strings.Split(langs, ", ") {
			if strings.Contains(lang, "*") {
				fullAudio = append(fullAudio, strings.ReplaceAll(lang, "*", ""))
			}
			supported = append(supported, strings.ReplaceAll(lang, "*", ""))
		}
	}
	game["supported_languages"] = supported
	game["full_audio_languages"] = fullAudio

	packages := []any{}
	for _, p := range getSlice(app, "package_groups") {
		pkg, ok := p.(map[string]any)
		if !ok {
			continue
		}
		subs := []any{}
		for _, s := range getSlice(pkg, "subs") {
			sub, ok := s.(map[string]any)
			if !ok {
				continue
			}
			cents := float64(toInt(sub["price_in_cents_with_discount"]))
			subs = append(subs, records.Record{
				"text":        sanitizeText(getString(sub, "option_text")),
				"description": getString(sub, "option_description"),
				"price":       math.Round(cents) / 100,
			})
		}
		packages = append(packages, records.Record{
			"title":       sanitizeText(getString(pkg, "title")),
			"description": sanitizeText(getString(pkg, "description")),
			"subs":        subs,
		})
	}
	game["packages"] = packages

	game["developers"] = trimmedStrings(getSlice(app, "developers"))
	game["publishers"] = trimmedStrings(getSlice(app, "publishers"))
	game["categories"] = descriptions(getSlice(app, "categories"))
	game["genres"] = descriptions(getSlice(app, "genres"))

	screenshots := []string{}
	for _, s := range getSlice(app, "screenshots") {
		if ss, ok := s.(map[string]any); ok {
			screenshots = append(screenshots, getString(ss, "path_full"))
		}
	}
	game["screenshots"] = screenshots

	movies := []string{}
	for _, m := range getSlice(app, "movies") {
		if mv, ok := m.(map[string]any); ok {
			if mp4 := getMap(mv, "mp4"); mp4 != nil {
				movies = append(movies, getString(mp4, "max"))
			}
		}
	}
	game["movies"] = movies

	return game
}

// ParseSpyGame extracts the SteamSpy aggregate fields, falling back to
// zero values when SteamSpy had no entry.
func ParseSpyGame(extra records.Record) records.Record {
	if extra == nil {
		return records.Record{
			"user_score": 0, "score_rank": "", "positive": 0, "negative": 0,
			"estimated_owners":         "0 - 0",
			"average_playtime_forever": 0, "average_playtime_2weeks": 0,
			"median_playtime_forever": 0, "median_playtime_2weeks": 0,
			"discount": 0, "peak_ccu": 0, "tags": []any{},
		}
	}
	owners := strings.ReplaceAll(getString(extra, "owners"), ",", "")
	owners = strings.ReplaceAll(owners, "..", "-")
	tags := extra["tags"]
	if tags == nil {
		tags = []any{}
	}
	return records.Record{
		"user_score":               toInt(extra["userscore"]),
		"score_rank":               asString(extra["score_rank"]),
		"positive":                 toInt(extra["positive"]),
		"negative":                 toInt(extra["negative"]),
		"estimated_owners":         owners,
		"average_playtime_forever": toInt(extra["average_forever"]),
		"average_playtime_2weeks":  toInt(extra["average_2weeks"]),
		"median_playtime_forever":  toInt(extra["median_forever"]),
		"median_playtime_2weeks":   toInt(extra["median_2weeks"]),
		"discount":                 toInt(extra["discount"]),
		"peak_ccu":                 toInt(extra["ccu"]),
		"tags":                     tags,
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

func trimmedStrings(vals []any) []string {
	out := []string{}
	for _, v := range vals {
		if s, ok := v.(string); ok {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func descriptions(vals []any) []string {
	out := []string{}
	for _, v := range vals {
		if m, ok := v.(map[string]any); ok {
			out = append(out, getString(m, "description"))
		}
	}
	return out
}
