// Copyright 2026 The OpsDash Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package period converts user-selected period tokens into UTC [from, to)
// timestamp pairs anchored to a fixed UTC-3 civil day, regardless of the
// timezone of the host or the viewer.
package period

import (
	"net/url"
	"time"
)

// Period tokens accepted from the dashboard UI.
const (
	TokenToday     = "today"
	TokenYesterday = "yesterday"
	Token7D        = "7d"
	Token30D       = "30d"
	TokenCustom    = "custom"
)

// dateLayout is the calendar-date format used by the custom range pickers.
const dateLayout = "2006-01-02"

// boardZone is the civil-day anchor for all period math. The operation is run
// for Brazilian tenants; day boundaries are fixed at UTC-3 so every viewer
// sees the same "today" no matter where they open the dashboard.
var boardZone = time.FixedZone("UTC-3", -3*60*60)

// Range is a half-open UTC time window. A nil To means "up to now".
// A nil From means "since the beginning".
type Range struct {
	From *time.Time
	To   *time.Time
}

// Resolve converts a period token into a Range relative to now.
// dateFrom and dateTo are only consulted for TokenCustom; either side may be
// empty, yielding a one-sided range. Unknown or empty tokens fall back to
// "today".
func Resolve(token, dateFrom, dateTo string, now time.Time) Range {
	switch token {
	case TokenYesterday:
		today := startOfDay(now)
		from := today.AddDate(0, 0, -1)
		return Range{From: &from, To: &today}
	case Token7D:
		return lastDays(now, 7)
	case Token30D:
		return lastDays(now, 30)
	case TokenCustom:
		return customRange(dateFrom, dateTo)
	case TokenToday:
		fallthrough
	default:
		from := startOfDay(now)
		return Range{From: &from}
	}
}

// lastDays returns an open-ended range covering the n most recent civil days,
// including the current one.
func lastDays(now time.Time, n int) Range {
	from := startOfDay(now).AddDate(0, 0, -(n - 1))
	return Range{From: &from}
}

// customRange builds a range from calendar-date strings. The upper bound is
// exclusive of the midnight after dateTo, so dateTo's whole day is included.
// Malformed bounds are treated as absent.
func customRange(dateFrom, dateTo string) Range {
	var r Range
	if dateFrom != "" {
		if d, err := time.ParseInLocation(dateLayout, dateFrom, boardZone); err == nil {
			from := d.UTC()
			r.From = &from
		}
	}
	if dateTo != "" {
		if d, err := time.ParseInLocation(dateLayout, dateTo, boardZone); err == nil {
			to := d.AddDate(0, 0, 1).UTC()
			r.To = &to
		}
	}
	return r
}

// startOfDay returns the UTC instant of 00:00 of now's UTC-3 civil day.
func startOfDay(now time.Time) time.Time {
	local := now.In(boardZone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, boardZone).UTC()
}

// Query encodes the range as from/to RFC3339 query parameters for the
// upstream APIs. Absent bounds are omitted.
func (r Range) Query() url.Values {
	v := url.Values{}
	if r.From != nil {
		v.Set("from", r.From.UTC().Format(time.RFC3339))
	}
	if r.To != nil {
		v.Set("to", r.To.UTC().Format(time.RFC3339))
	}
	return v
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && !t.Before(*r.To) {
		return false
	}
	return true
}

// Equal reports whether two ranges describe the same window.
func (r Range) Equal(other Range) bool {
	return equalBound(r.From, other.From) && equalBound(r.To, other.To)
}

func equalBound(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
