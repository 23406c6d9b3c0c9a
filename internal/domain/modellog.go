package domain

import "time"

// Model log statuses.
const (
	ModelLogStatusStarted = "started"
	ModelLogStatusSuccess = "success"
	ModelLogStatusFailed  = "failed"
)

// ModelLog records one model retraining attempt.
// Corresponds to model_logs table in PostgreSQL.
type ModelLog struct {
	ModelLogID   int64 // PRIMARY KEY
	UserID       int64 // FK users, zero when triggered by the scheduler
	TrainedAt    time.Time
	RecordsCount int    // feature rows available at trigger time
	Status       string // started | success | failed
	ErrorMessage string // empty unless failed
}
