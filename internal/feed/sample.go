package feed

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// rawPayloadLimit is how many characters of the original request body are
// retained for debugging.
const rawPayloadLimit = 4000

// FieldCount is the number of opaque value slots per entry. By convention
// field1/2/3 carry PM1.0/PM2.5/PM10 but the store treats all eight uniformly.
const FieldCount = 8

// Sample is the canonical ingestion input after merging all encodings.
// Nil pointers mean the field was not supplied at all, which the store
// preserves as SQL NULL.
type Sample struct {
	APIKey     string
	Status     *string
	Fields     [FieldCount]*string
	RawPayload *string
}

// ReadSample merges the request's query string, form body, and JSON body
// into one canonical field set. Later sources overwrite earlier ones:
// query first, then form, then JSON. The api_key is accepted under either
// "api_key" or "apikey" and is whitespace-trimmed; validation against the
// configured secret happens at the ingestion boundary, not here.
//
// The original body is captured verbatim, truncated to 4000 characters.
// A body-read failure yields an absent raw payload: ingestion must never
// fail merely because capture failed.
func ReadSample(r *http.Request) Sample {
	merged := make(map[string]string)

	for key, vals := range r.URL.Query() {
		if len(vals) > 0 {
			merged[key] = vals[0]
		}
	}

	body, bodyOK := readBody(r)
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch {
	case ct == "application/x-www-form-urlencoded" && bodyOK:
		if form, err := url.ParseQuery(string(body)); err == nil {
			for key, vals := range form {
				if len(vals) > 0 {
					merged[key] = vals[0]
				}
			}
		}
	case ct == "application/json" && bodyOK:
		mergeJSON(merged, body)
	}

	s := Sample{
		APIKey: apiKey(merged),
		Status: optional(merged, "status"),
	}
	for i := range s.Fields {
		s.Fields[i] = optional(merged, "field"+strconv.Itoa(i+1))
	}
	if bodyOK {
		raw := truncateRunes(string(body), rawPayloadLimit)
		s.RawPayload = &raw
	}
	return s
}

// readBody drains the request body. Failure is absorbed: the sample simply
// carries no raw payload.
func readBody(r *http.Request) ([]byte, bool) {
	if r.Body == nil {
		return nil, false
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, false
	}
	return body, true
}

// mergeJSON overlays a JSON object's scalar members onto the merged map.
// Non-object bodies are ignored. A null member removes the key, matching
// "supplied as absent" semantics; arrays and objects are skipped.
func mergeJSON(merged map[string]string, body []byte) {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return
	}
	for key, val := range obj {
		switch v := val.(type) {
		case string:
			merged[key] = v
		case float64:
			merged[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			merged[key] = strconv.FormatBool(v)
		case nil:
			delete(merged, key)
		}
	}
}

// apiKey extracts the shared secret, accepting the legacy "apikey" spelling
// when "api_key" is absent or empty.
func apiKey(merged map[string]string) string {
	key := merged["api_key"]
	if key == "" {
		key = merged["apikey"]
	}
	return strings.TrimSpace(key)
}

func optional(merged map[string]string, key string) *string {
	if v, ok := merged[key]; ok {
		return &v
	}
	return nil
}

// truncateRunes cuts s to at most n characters, not bytes, so a multi-byte
// rune is never split.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
