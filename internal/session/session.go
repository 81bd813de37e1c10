// Package session persists decode outcomes to sqlite for after-the-fact
// inspection of a viewing session. Recording is optional: a nil *Recorder is
// safe to pass around and does nothing.
package session

import (
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/overlaylab/stegosub/internal/decoder"
	"github.com/overlaylab/stegosub/internal/monitoring"
)

//go:embed schema.sql
var schemaSQL string

// Recorder writes one row per decode outcome under a session ID. It
// implements decoder.Observer.
type Recorder struct {
	db        *sql.DB
	sessionID string
}

// Open creates or reuses the sqlite file at path, applies the schema and
// starts a new session row.
func Open(path, notes string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply session schema: %w", err)
	}

	id := uuid.NewString()
	if _, err := db.Exec(`INSERT INTO decode_sessions (id, notes) VALUES (?, ?)`, id, notes); err != nil {
		db.Close()
		return nil, fmt.Errorf("start session: %w", err)
	}
	monitoring.Logf("session %s recording to %s", id, path)
	return &Recorder{db: db, sessionID: id}, nil
}

// SessionID returns the ID of the active session.
func (r *Recorder) SessionID() string {
	if r == nil {
		return ""
	}
	return r.sessionID
}

// ObserveDecode appends one decode outcome. Insert errors are logged and
// swallowed: recording must never disturb the decode loop.
func (r *Recorder) ObserveDecode(res decoder.DecodeResult) {
	if r == nil {
		return
	}
	var subID, subText string
	if res.Subtitle != nil {
		subID = res.Subtitle.ID
		subText = res.Subtitle.Text
	}
	_, err := r.db.Exec(`
		INSERT INTO decode_results
			(session_id, success, failure_kind, error, frame_number,
			 timestamp_ms, subtitle_id, subtitle_text, partial, decode_time_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.sessionID, res.Success, string(res.Kind), res.Error, res.FrameNumber,
		res.TimestampMs, subID, subText, res.Partial, res.DecodeTimeMs)
	if err != nil {
		monitoring.Logf("session: record decode failed: %v", err)
	}
}

// Result is one persisted decode outcome.
type Result struct {
	ID           int64   `json:"id"`
	RecordedAt   float64 `json:"recorded_at"`
	Success      bool    `json:"success"`
	FailureKind  string  `json:"failure_kind,omitempty"`
	Error        string  `json:"error,omitempty"`
	FrameNumber  int64   `json:"frame_number"`
	TimestampMs  int64   `json:"timestamp_ms"`
	SubtitleID   string  `json:"subtitle_id,omitempty"`
	SubtitleText string  `json:"subtitle_text,omitempty"`
	Partial      bool    `json:"partial,omitempty"`
	DecodeTimeMs float64 `json:"decode_time_ms"`
}

// Recent returns the most recent outcomes of the active session, newest
// first.
func (r *Recorder) Recent(limit int) ([]Result, error) {
	if r == nil {
		return nil, nil
	}
	rows, err := r.db.Query(`
		SELECT id, recorded_at, success, failure_kind, error, frame_number,
		       timestamp_ms, subtitle_id, subtitle_text, partial, decode_time_ms
		FROM decode_results
		WHERE session_id = ?
		ORDER BY id DESC
		LIMIT ?`, r.sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query session results: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var res Result
		if err := rows.Scan(&res.ID, &res.RecordedAt, &res.Success, &res.FailureKind,
			&res.Error, &res.FrameNumber, &res.TimestampMs, &res.SubtitleID,
			&res.SubtitleText, &res.Partial, &res.DecodeTimeMs); err != nil {
			return nil, fmt.Errorf("scan session result: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Summary aggregates the active session's counters.
type Summary struct {
	SessionID string `json:"session_id"`
	Total     int64  `json:"total"`
	Succeeded int64  `json:"succeeded"`
	Partial   int64  `json:"partial"`
}

// Summarize counts the outcomes recorded so far in the active session.
func (r *Recorder) Summarize() (Summary, error) {
	if r == nil {
		return Summary{}, nil
	}
	s := Summary{SessionID: r.sessionID}
	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(success), 0),
		       COALESCE(SUM(partial), 0)
		FROM decode_results WHERE session_id = ?`, r.sessionID).
		Scan(&s.Total, &s.Succeeded, &s.Partial)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize session: %w", err)
	}
	return s, nil
}

// Close stamps the session end time and closes the database.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	if _, err := r.db.Exec(`UPDATE decode_sessions SET ended_at = UNIXEPOCH('subsec') WHERE id = ?`,
		r.sessionID); err != nil {
		monitoring.Logf("session: close stamp failed: %v", err)
	}
	return r.db.Close()
}
