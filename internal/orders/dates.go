package orders

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"20060102",
	"02-Jan-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

var monthFirstLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"1/2/06",
	"1-2-2006",
}

var dayFirstLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
}

var dottedLayouts = []string{
	"02.01.2006 15:04:05",
	"02.01.2006",
	"2.1.2006",
}

type dateParser struct {
	dayFirst bool
	serials  bool
	date1904 bool
}

// parse returns nil and ok=true for blank cells, nil and ok=false for cells
// it could not read. All results are wall-clock times in UTC.
func (p dateParser) parse(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "nan") || strings.EqualFold(raw, "nat") {
		return nil, true
	}

	if p.serials {
		if serial, err := strconv.ParseFloat(raw, 64); err == nil {
			if serial <= 0 {
				return nil, false
			}
			t, err := excelize.ExcelDateToTime(serial, p.date1904)
			if err != nil {
				return nil, false
			}
			t = wallClock(t)
			return &t, true
		}
	}

	first, second := monthFirstLayouts, dayFirstLayouts
	if p.dayFirst {
		first, second = dayFirstLayouts, monthFirstLayouts
	}
	for _, group := range [][]string{isoLayouts, first, second, dottedLayouts} {
		for _, layout := range group {
			if t, err := time.Parse(layout, raw); err == nil {
				t = wallClock(t)
				return &t, true
			}
		}
	}
	return nil, false
}

// wallClock drops the zone while keeping the printed date and time.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// WallClock is exported for the feature deriver so "now" and parsed dates
// live on the same zone-less timeline.
func WallClock(t time.Time) time.Time {
	return wallClock(t)
}
