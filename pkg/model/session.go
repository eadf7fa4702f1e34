package model

import (
	"fmt"
	"time"
)

// FormatSessionID renders a session identifier as S####(YYYY-MM-DD),
// where the date is the calendar date of the session's first record.
// Records without a timestamp, such as orphan change items, group under
// an "unknown" date.
func FormatSessionID(seq int, date time.Time) string {
	if date.IsZero() {
		return fmt.Sprintf("S%04d (unknown)", seq)
	}
	return fmt.Sprintf("S%04d (%s)", seq, date.Format("2006-01-02"))
}

// Session is an ordered, contiguous grouping of one user's records.
// Record order is chronological; sessions are never merged or split
// after assignment.
type Session struct {
	ID      string       `json:"session_id"`
	User    string       `json:"user"`
	Records []*LogRecord `json:"records"`
}

// Start returns the timestamp of the session's first record.
func (s *Session) Start() time.Time {
	if len(s.Records) == 0 {
		return time.Time{}
	}
	return s.Records[0].Timestamp
}

// MaxRisk returns the highest risk level among the session's records.
func (s *Session) MaxRisk() RiskLevel {
	max := RiskLow
	for _, rec := range s.Records {
		if rec.Risk.Level > max {
			max = rec.Risk.Level
		}
	}
	return max
}

// GroupSessions partitions a session-tagged, ordered record slice into
// Session values, preserving record order. Records with the same session
// ID must be contiguous in the input.
func GroupSessions(records []*LogRecord) []*Session {
	var sessions []*Session
	var current *Session
	for _, rec := range records {
		if current == nil || rec.SessionID != current.ID {
			current = &Session{ID: rec.SessionID, User: rec.User}
			sessions = append(sessions, current)
		}
		current.Records = append(current.Records, rec)
	}
	return sessions
}
