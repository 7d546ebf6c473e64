package dto

// PredictionResponse is returned by POST /api/predict.
type PredictionResponse struct {
	Label             string      `json:"label"`
	Confidence        float64     `json:"confidence"`
	ConfidencePercent string      `json:"confidencePercent"`
	RawScore          float64     `json:"rawScore"`
	Emoji             string      `json:"emoji"`
	Message           string      `json:"message"`
	Speech            string      `json:"speech"`
	Sound             string      `json:"sound,omitempty"`
	Fact              string      `json:"fact,omitempty"`
	Guess             string      `json:"guess"`
	Outcome           string      `json:"outcome"`
	GuessMessage      string      `json:"guessMessage,omitempty"`
	Celebrate         bool        `json:"celebrate"`
	AnimationURL      string      `json:"animationUrl,omitempty"`
	Scoreboard        *Scoreboard `json:"scoreboard,omitempty"`
}
