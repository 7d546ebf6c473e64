package model

import "time"

// Prediction is a stored classification made for a session.
type Prediction struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"sessionId"`
	Label       string    `json:"label"`
	Confidence  float64   `json:"confidence"`
	RawScore    float64   `json:"rawScore"`
	Guess       string    `json:"guess"`
	Outcome     string    `json:"outcome"`
	ImageWidth  int       `json:"imageWidth"`
	ImageHeight int       `json:"imageHeight"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PredictionFilter contains filtering options for querying predictions.
type PredictionFilter struct {
	SessionID string
	Label     string
	Outcome   string
	Limit     int
	Offset    int
}

// PredictionStats contains statistics about stored predictions.
type PredictionStats struct {
	TotalPredictions  int            `json:"totalPredictions"`
	PerLabel          map[string]int `json:"perLabel"`
	PerOutcome        map[string]int `json:"perOutcome"`
	AverageConfidence float64        `json:"averageConfidence"`
	Sessions          int            `json:"sessions"`
}
