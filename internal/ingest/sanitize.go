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
	"regexp"
	"strconv"
	"strings"
)

var (
	urlRe   = regexp.MustCompile(`(https|http)?://[\w./?=&%]*\b`)
	tagRe   = regexp.MustCompile(`<[^<]+?>`)
	spaceRe = regexp.MustCompile(` +`)
	priceRe = regexp.MustCompile(`[0-9]+[,.]+[0-9]+`)
)

var escapeReplacer = strings.NewReplacer(
	"\n\r", " ",
	"\r\n", " ",
	"\r \n", " ",
	"\r", " ",
	"\n", " ",
	"\t", " ",
	"&quot;", "'",
)

// sanitizeText removes HTML tags, escape codes, and URLs from scraped text.
func sanitizeText(text string) string {
	text = escapeReplacer.Replace(text)
	text = urlRe.ReplaceAllString(text, "")
	text = tagRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimLeft(text, " ")
}

// priceToFloat extracts a price from display text like "19,99€".
func priceToFloat(price string) float64 {
	price = strings.ReplaceAll(price, ",", ".")
	match := priceRe.FindString(price)
	if match == "" {
		return 0
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return math.Round(f*100) / 100
}
