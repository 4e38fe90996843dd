package feed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Entry is one persisted telemetry sample row.
type Entry struct {
	ID         int64     `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	APIKey     *string   `json:"api_key"`
	Status     *string   `json:"status"`
	Field1     *string   `json:"field1"`
	Field2     *string   `json:"field2"`
	Field3     *string   `json:"field3"`
	Field4     *string   `json:"field4"`
	Field5     *string   `json:"field5"`
	Field6     *string   `json:"field6"`
	Field7     *string   `json:"field7"`
	Field8     *string   `json:"field8"`
	RawPayload *string   `json:"raw_payload"`
}

// Store manages entries persistence. It is safe for concurrent use: the only
// Go-level synchronization is the one-time schema provisioning flag, all
// query concurrency is handled by the database/sql pool.
type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
	attempts     int

	// Double-checked schema provisioning: provisioned is the lock-free
	// fast path, mu guards the provisioning itself. The flag is only set
	// after the DDL succeeds so a failed attempt is retried by the next
	// request.
	provisioned atomic.Bool
	mu          sync.Mutex
}

// NewStore wraps an existing *sql.DB connection pool. queryTimeout bounds
// every storage call; attempts enables bounded retry for transient errors
// (1 = single attempt).
func NewStore(db *sql.DB, queryTimeout time.Duration, attempts int) *Store {
	if attempts < 1 {
		attempts = 1
	}
	return &Store{db: db, queryTimeout: queryTimeout, attempts: attempts}
}

// MarkProvisioned records that the schema already exists, e.g. after
// running startup migrations, so the lazy DDL path is skipped entirely.
func (s *Store) MarkProvisioned() {
	s.provisioned.Store(true)
}

// ensureSchema provisions the entries table exactly once per process.
// Every store operation calls it; after the first success it is a single
// atomic load.
func (s *Store) ensureSchema(ctx context.Context) error {
	if s.provisioned.Load() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.provisioned.Load() {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, queryCreateEntries); err != nil {
		return fmt.Errorf("provision entries table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, queryCreateEntriesIndex); err != nil {
		return fmt.Errorf("provision entries index: %w", err)
	}

	s.provisioned.Store(true)
	slog.Info("entries schema provisioned")
	return nil
}

// ---------------------------------------------------------------------------
// Ingestion
// ---------------------------------------------------------------------------

// InsertEntry persists one sample and returns the store-assigned id.
// created_at is stamped here, the current instant in UTC at microsecond
// precision, never client-supplied. Absent optional fields persist as NULL.
func (s *Store) InsertEntry(ctx context.Context, sample Sample) (int64, error) {
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	var id int64
	err := s.withRetry(ctx, "insert entry", func(opCtx context.Context) error {
		if err := s.ensureSchema(opCtx); err != nil {
			return err
		}
		return s.db.QueryRowContext(opCtx, queryInsertEntry,
			createdAt,
			sample.APIKey,
			nullStr(sample.Status),
			nullStr(sample.Fields[0]),
			nullStr(sample.Fields[1]),
			nullStr(sample.Fields[2]),
			nullStr(sample.Fields[3]),
			nullStr(sample.Fields[4]),
			nullStr(sample.Fields[5]),
			nullStr(sample.Fields[6]),
			nullStr(sample.Fields[7]),
			nullStr(sample.RawPayload),
		).Scan(&id)
	})
	if err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}
	return id, nil
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// LatestEntry returns the single newest entry by id.
// Returns sql.ErrNoRows (wrapped) when the table is empty.
func (s *Store) LatestEntry(ctx context.Context) (Entry, error) {
	var e Entry
	err := s.withRetry(ctx, "latest entry", func(opCtx context.Context) error {
		if err := s.ensureSchema(opCtx); err != nil {
			return err
		}
		return scanEntry(s.db.QueryRowContext(opCtx, queryLatestEntry), &e)
	})
	if err != nil {
		return Entry{}, fmt.Errorf("latest entry: %w", err)
	}
	return e, nil
}

// SelectWindow returns the newest entries matching the window, newest first
// (ORDER BY id DESC), bounded by the window's limit. Callers wanting
// chronological order reverse in memory; see ShapeSeries.
func (s *Store) SelectWindow(ctx context.Context, w Window) ([]Entry, error) {
	query, args := buildWindowQuery(w)

	var entries []Entry
	err := s.withRetry(ctx, "select window", func(opCtx context.Context) error {
		if err := s.ensureSchema(opCtx); err != nil {
			return err
		}

		rows, err := s.db.QueryContext(opCtx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		entries = entries[:0]
		for rows.Next() {
			var e Entry
			if err := scanEntry(rows, &e); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("select window: %w", err)
	}
	return entries, nil
}

// buildWindowQuery appends the window predicate and bound to the base select.
// Only the clauses for present bounds are emitted; an empty window scans the
// whole table bounded by limit alone.
func buildWindowQuery(w Window) (string, []any) {
	var (
		sb    strings.Builder
		args  []any
		conds []string
	)
	sb.WriteString(querySelectEntries)

	if w.Start != nil {
		args = append(args, *w.Start)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if w.End != nil {
		args = append(args, *w.End)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString("\nWHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	args = append(args, w.Limit)
	fmt.Fprintf(&sb, "\nORDER BY id DESC\nLIMIT $%d", len(args))
	return sb.String(), args
}

// scanEntry reads one row into e. Works for both QueryRow and rows cursors.
func scanEntry(row interface{ Scan(...any) error }, e *Entry) error {
	if err := row.Scan(
		&e.ID,
		&e.CreatedAt,
		&e.APIKey,
		&e.Status,
		&e.Field1,
		&e.Field2,
		&e.Field3,
		&e.Field4,
		&e.Field5,
		&e.Field6,
		&e.Field7,
		&e.Field8,
		&e.RawPayload,
	); err != nil {
		return err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// withRetry runs fn up to s.attempts times with exponential backoff,
// each attempt bounded by the store's query timeout. No-rows results are
// returned immediately: they are answers, not failures.
func (s *Store) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	backoff := 50 * time.Millisecond

	var err error
	for attempt := 1; ; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
		err = fn(opCtx)
		cancel()

		if err == nil || errors.Is(err, sql.ErrNoRows) || attempt >= s.attempts {
			return err
		}

		slog.Warn("storage retry", "op", op, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func nullStr(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
