package domain

import "time"

// PredictionEvent is the record published for each completed prediction. It
// carries the outcome only; the feature vector is not emitted.
type PredictionEvent struct {
	ID             string    `json:"id"`
	Severity       Severity  `json:"severity"`
	Code           int       `json:"code"`
	LocationMethod string    `json:"location_method"`
	PredictedAt    time.Time `json:"predicted_at"`
}
