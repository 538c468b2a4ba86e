package model

import "time"

// AnswerRecord is one answered query kept in the answer log.
type AnswerRecord struct {
	ID        string
	Query     string
	Answer    string
	Provider  string
	Model     string
	Cached    bool
	LatencyMs int64
	CreatedAt time.Time
}
