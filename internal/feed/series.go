package feed

import (
	"strconv"
	"strings"
)

// labelLayout renders entry instants for chart labels. The trailing Z is
// appended by policy; stored instants are UTC by convention.
const labelLayout = "2006-01-02T15:04:05.000000Z"

// SeriesMeta echoes the window parameters exactly as received, plus the
// resolved limit and result count, so callers can audit what was applied.
type SeriesMeta struct {
	TZ          string `json:"tz"`
	Start       string `json:"start"`
	End         string `json:"end"`
	LastMinutes string `json:"last_minutes"`
	Limit       int    `json:"limit"`
	Points      int    `json:"points"`
}

// ChannelSet holds the three fixed PM channels. A nil element marks a
// missing or unparseable value, distinct from a present zero, and
// marshals as JSON null.
type ChannelSet struct {
	PM1  []*float64 `json:"pm1"`
	PM25 []*float64 `json:"pm25"`
	PM10 []*float64 `json:"pm10"`
}

// SeriesBundle is the chart-ready query response: chronologically ascending
// labels with per-channel values aligned index-for-index.
type SeriesBundle struct {
	Meta   SeriesMeta `json:"meta"`
	Labels []string   `json:"labels"`
	Series ChannelSet `json:"series"`
}

// ShapeSeries reshapes newest-first entries into a chronological bundle.
//
// The store hands back ORDER BY id DESC for efficient "most recent N"
// retrieval; this reverses in memory so charts read oldest to newest.
// field1/2/3 map to pm1/pm25/pm10; fields 4–8 stay in storage only.
// Coercion failures are silent here; the boundary decides whether nulls
// matter.
func ShapeSeries(entries []Entry, w Window) SeriesBundle {
	n := len(entries)
	bundle := SeriesBundle{
		Meta: SeriesMeta{
			TZ:          "UTC",
			Start:       w.Raw.Start,
			End:         w.Raw.End,
			LastMinutes: w.Raw.LastMinutes,
			Limit:       w.Limit,
			Points:      n,
		},
		Labels: make([]string, 0, n),
		Series: ChannelSet{
			PM1:  make([]*float64, 0, n),
			PM25: make([]*float64, 0, n),
			PM10: make([]*float64, 0, n),
		},
	}

	for i := n - 1; i >= 0; i-- {
		e := entries[i]
		bundle.Labels = append(bundle.Labels, e.CreatedAt.UTC().Format(labelLayout))
		bundle.Series.PM1 = append(bundle.Series.PM1, coerceValue(e.Field1))
		bundle.Series.PM25 = append(bundle.Series.PM25, coerceValue(e.Field2))
		bundle.Series.PM10 = append(bundle.Series.PM10, coerceValue(e.Field3))
	}
	return bundle
}

// coerceValue best-effort converts an opaque field to a number.
// Absent, empty, and non-numeric all yield the missing marker, never zero.
func coerceValue(field *string) *float64 {
	if field == nil {
		return nil
	}
	s := strings.TrimSpace(*field)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
