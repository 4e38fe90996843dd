// Package feed implements the telemetry feed core: sample ingestion over
// merged HTTP encodings, lazy schema provisioning, and windowed, bounded,
// chronologically shaped series extraction.
package feed

// All SQL queries are collected here so they are easy to audit and test.
const (
	// queryCreateEntries provisions the append-only entries table.
	// created_at is a true UTC instant with microsecond precision; the
	// eight value slots are opaque text by design.
	queryCreateEntries = `
CREATE TABLE IF NOT EXISTS entries (
    id          BIGSERIAL PRIMARY KEY,
    created_at  timestamptz(6) NOT NULL,
    api_key     varchar(64),
    status      varchar(255),
    field1      varchar(255),
    field2      varchar(255),
    field3      varchar(255),
    field4      varchar(255),
    field5      varchar(255),
    field6      varchar(255),
    field7      varchar(255),
    field8      varchar(255),
    raw_payload text
)`

	// queryCreateEntriesIndex supports range scans on the creation instant.
	// Separate statement because the pgx extended protocol runs one
	// statement per Exec.
	queryCreateEntriesIndex = `
CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries (created_at)`

	// queryInsertEntry persists one sample. The id comes back from the
	// store so the caller can echo it to the device.
	queryInsertEntry = `
INSERT INTO entries (
    created_at, api_key, status,
    field1, field2, field3, field4, field5, field6, field7, field8,
    raw_payload
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id`

	// queryLatestEntry returns the single newest entry. Ordering is by id:
	// insertion order is strict even when the wall clock regresses.
	queryLatestEntry = `
SELECT id, created_at, api_key, status,
       field1, field2, field3, field4, field5, field6, field7, field8,
       raw_payload
FROM entries
ORDER BY id DESC
LIMIT 1`

	// querySelectEntries is the base of the windowed read. The store
	// appends the window predicate, then ORDER BY id DESC LIMIT $n to
	// fetch the newest rows matching the window.
	querySelectEntries = `
SELECT id, created_at, api_key, status,
       field1, field2, field3, field4, field5, field6, field7, field8,
       raw_payload
FROM entries`
)
