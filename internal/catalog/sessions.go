package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session is one recorded play session.
type Session struct {
	ID        string
	Name      string
	Mode      string
	StartedAt time.Time
	EndedAt   *time.Time
}

// Active reports whether the session has not ended yet.
func (s Session) Active() bool {
	return s.EndedAt == nil
}

// DetectionEvent is one detection outcome recorded against a session.
type DetectionEvent struct {
	ID         string
	SessionID  string
	Kind       string
	Keyword    string
	Category   string
	Emotion    string
	Confidence float64
	Transcript string
	OffsetMS   uint64
	CreatedAt  time.Time
}

const sessionColumns = "id, name, mode, started_at, ended_at"

// CreateSession opens a new session record.
func (s *Store) CreateSession(ctx context.Context, name, mode string) (Session, error) {
	if strings.TrimSpace(name) == "" {
		name = "Session " + time.Now().Format("2006-01-02 15:04")
	}
	session := Session{
		ID:        uuid.NewString(),
		Name:      name,
		Mode:      mode,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (id, name, mode, started_at, ended_at) VALUES (?, ?, ?, ?, NULL)`,
		session.ID,
		session.Name,
		session.Mode,
		session.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

// EndSession stamps the session's end time. Ending an already ended session
// is a no-op.
func (s *Store) EndSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions SET ended_at = ? WHERE id = ? AND ended_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// Session fetches a session by ID.
func (s *Store) Session(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

// Sessions lists sessions newest first.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// RecordEvent appends a detection event to a session.
func (s *Store) RecordEvent(ctx context.Context, event DetectionEvent) (DetectionEvent, error) {
	if event.SessionID == "" {
		return DetectionEvent{}, errors.New("event session id is empty")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO detection_events (
            id, session_id, kind, keyword, category, emotion,
            confidence, transcript, offset_ms, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.SessionID,
		event.Kind,
		event.Keyword,
		event.Category,
		event.Emotion,
		event.Confidence,
		event.Transcript,
		event.OffsetMS,
		event.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return DetectionEvent{}, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

// EventsBySession lists a session's events in detection order.
func (s *Store) EventsBySession(ctx context.Context, sessionID string) ([]DetectionEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, kind, keyword, category, emotion,
                confidence, transcript, offset_ms, created_at
         FROM detection_events WHERE session_id = ? ORDER BY offset_ms, created_at`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []DetectionEvent
	for rows.Next() {
		var (
			event      DetectionEvent
			createdRaw string
		)
		if err := rows.Scan(
			&event.ID, &event.SessionID, &event.Kind, &event.Keyword, &event.Category,
			&event.Emotion, &event.Confidence, &event.Transcript, &event.OffsetMS, &createdRaw,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if created, err := parseTimeString(createdRaw); err == nil {
			event.CreatedAt = created
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func scanSession(scanner interface{ Scan(dest ...any) error }) (Session, error) {
	var (
		session    Session
		startedRaw string
		endedRaw   sql.NullString
	)
	if err := scanner.Scan(&session.ID, &session.Name, &session.Mode, &startedRaw, &endedRaw); err != nil {
		return Session{}, fmt.Errorf("scan session: %w", err)
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		session.StartedAt = started
	}
	if endedRaw.Valid {
		if ended, err := parseTimeString(endedRaw.String); err == nil {
			session.EndedAt = &ended
		}
	}
	return session, nil
}
