package feed

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// Handler exposes the feed HTTP endpoints.
type Handler struct {
	store    *Store
	writeKey string
}

// NewHandler creates a Handler backed by the given Store. writeKey is the
// shared secret every write and read must present.
func NewHandler(store *Store, writeKey string) *Handler {
	return &Handler{store: store, writeKey: writeKey}
}

// ---------------------------------------------------------------------------
// Response types
// ---------------------------------------------------------------------------

// LatestResponse is returned by GET /latest on success.
type LatestResponse struct {
	OK   bool  `json:"ok"`
	Data Entry `json:"data"`
}

// ChartResponse is returned by GET /chart.
type ChartResponse struct {
	OK bool `json:"ok"`
	SeriesBundle
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error" example:"invalid last_minutes"`
}

type messageResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message" example:"no data"`
}

// ---------------------------------------------------------------------------
// GET|POST /update
// ---------------------------------------------------------------------------

// Update godoc
//
//	@Summary		Ingest one telemetry sample
//	@Description	Accepts query-string, form-encoded, and JSON fields (later sources win).
//	@Description	Responds with the new entry id, or "0" when the api_key is missing or wrong;
//	@Description	always HTTP 200, matching the legacy device protocol.
//	@Tags			ingest
//	@Produce		plain
//	@Param			api_key	query		string	false	"write secret (also accepted as apikey, form, or JSON)"
//	@Param			field1	query		string	false	"PM1.0 reading"
//	@Param			field2	query		string	false	"PM2.5 reading"
//	@Param			field3	query		string	false	"PM10 reading"
//	@Success		200		{string}	string	"entry id, or 0 on rejection"
//	@Router			/update [post]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sample := ReadSample(r)
	if !h.authorized(sample.APIKey) {
		// Legacy contract: rejected writes are success-shaped. Devices
		// expect body "0" with HTTP 200, never an error status.
		slog.Info("update rejected", "remote", r.RemoteAddr)
		writeText(w, http.StatusOK, "0")
		return
	}

	id, err := h.store.InsertEntry(r.Context(), sample)
	if err != nil {
		slog.Error("insert entry failed", "error", err)
		writeText(w, http.StatusInternalServerError, "storage failure")
		return
	}

	slog.Info("entry ingested",
		"id", id,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	writeText(w, http.StatusOK, strconv.FormatInt(id, 10))
}

// ---------------------------------------------------------------------------
// GET /latest
// ---------------------------------------------------------------------------

// Latest godoc
//
//	@Summary		Fetch the newest entry
//	@Tags			query
//	@Produce		json
//	@Param			api_key	query		string	true	"shared secret"
//	@Success		200		{object}	LatestResponse
//	@Failure		401		{object}	errorResponse
//	@Failure		404		{object}	messageResponse
//	@Router			/latest [get]
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	sample := ReadSample(r)
	if !h.authorized(sample.APIKey) {
		writeErr(w, http.StatusUnauthorized, "invalid api key")
		return
	}

	entry, err := h.store.LatestEntry(r.Context())
	switch {
	case errors.Is(err, sql.ErrNoRows):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "no data"})
		return
	case err != nil:
		slog.Error("latest entry failed", "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to fetch latest entry")
		return
	}

	writeJSON(w, http.StatusOK, LatestResponse{OK: true, Data: entry})
}

// ---------------------------------------------------------------------------
// GET /chart
// ---------------------------------------------------------------------------

// Chart godoc
//
//	@Summary		Windowed chronological series for charting
//	@Description	Resolves the time window from last_minutes (relative, clamped to [1, 44640])
//	@Description	or start/end (absolute), bounded by limit (clamped to [1, 2000]).
//	@Tags			query
//	@Produce		json
//	@Param			api_key			query		string	true	"shared secret"
//	@Param			limit			query		string	false	"max points, default 2000"
//	@Param			last_minutes	query		string	false	"relative lookback in minutes; wins over start/end"
//	@Param			start			query		string	false	"window start (several timestamp forms accepted)"
//	@Param			end				query		string	false	"window end"
//	@Success		200				{object}	ChartResponse
//	@Failure		400				{object}	errorResponse
//	@Failure		401				{object}	errorResponse
//	@Router			/chart [get]
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sample := ReadSample(r)
	if !h.authorized(sample.APIKey) {
		writeErr(w, http.StatusUnauthorized, "invalid api key")
		return
	}

	q := r.URL.Query()
	params := WindowParams{
		Limit:       q.Get("limit"),
		LastMinutes: q.Get("last_minutes"),
		Start:       q.Get("start"),
		End:         q.Get("end"),
	}

	window, err := ResolveWindow(params, time.Now().UTC())
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.store.SelectWindow(r.Context(), window)
	if err != nil {
		slog.Error("select window failed", "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to fetch entries")
		return
	}

	bundle := ShapeSeries(entries, window)

	slog.Info("chart served",
		"points", bundle.Meta.Points,
		"limit", window.Limit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, ChartResponse{OK: true, SeriesBundle: bundle})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// authorized compares the presented secret by exact match; empty never passes.
func (h *Handler) authorized(key string) bool {
	return key != "" && key == h.writeKey
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
