// Package sensorsim generates synthetic particulate-matter samples and posts
// them to the feed's /update endpoint, standing in for a real sensor during
// local development.
package sensorsim

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dustfeed/dustfeed/internal/config"
	"github.com/dustfeed/dustfeed/internal/httpx"
)

// reading is one synthetic PM measurement set in µg/m³.
type reading struct {
	pm1  float64
	pm25 float64
	pm10 float64
}

// Run posts samples at the configured interval until ctx is cancelled or
// cfg.Count samples have been sent. It blocks.
func Run(ctx context.Context, cfg config.SensorSim, client *httpx.Client) {
	runID := uuid.New().String()[:8]
	updateURL := cfg.FeedURL + "/update"

	slog.Info("sensorsim started",
		"run_id", runID,
		"feed_url", cfg.FeedURL,
		"interval_ms", cfg.IntervalMS,
		"count", cfg.Count,
	)

	interval := time.Duration(cfg.IntervalMS) * time.Millisecond
	cur := reading{pm1: 8, pm25: 12, pm10: 20}

	for sent := 0; cfg.Count == 0 || sent < cfg.Count; sent++ {
		cur = drift(cur)
		postSample(ctx, client, updateURL, cfg.WriteKey, runID, cur)

		select {
		case <-ctx.Done():
			slog.Info("sensorsim stopped", "sent", sent+1)
			return
		case <-time.After(interval):
		}
	}
	slog.Info("sensorsim finished", "sent", cfg.Count)
}

// drift random-walks each channel, clamped to stay non-negative and ordered
// the way real PM fractions are (pm1 ≤ pm25 ≤ pm10, roughly).
func drift(r reading) reading {
	step := func(v, lo float64) float64 {
		v += rand.Float64()*2 - 1
		if v < lo {
			v = lo
		}
		return v
	}
	r.pm1 = step(r.pm1, 0)
	r.pm25 = step(r.pm25, r.pm1)
	r.pm10 = step(r.pm10, r.pm25)
	return r
}

// postSample sends one form-encoded sample. The feed answers with the entry
// id, or "0" when the write key is rejected.
func postSample(ctx context.Context, client *httpx.Client, endpoint, key, runID string, r reading) {
	start := time.Now()

	form := url.Values{}
	form.Set("api_key", key)
	form.Set("status", "sim-"+runID)
	form.Set("field1", strconv.FormatFloat(r.pm1, 'f', 1, 64))
	form.Set("field2", strconv.FormatFloat(r.pm25, 'f', 1, 64))
	form.Set("field3", strconv.FormatFloat(r.pm10, 'f', 1, 64))

	resp, err := client.PostForm(ctx, endpoint, form)
	if err != nil {
		slog.Error("post sample failed", "error", err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64))
	id := strings.TrimSpace(string(body))
	if id == "0" {
		slog.Warn("sample rejected, check WRITE_KEY")
		return
	}

	slog.Debug("sample accepted",
		"id", id,
		"latency_ms", time.Since(start).Milliseconds(),
	)
}
