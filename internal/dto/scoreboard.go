package dto

import "catdog/internal/model"

// Scoreboard is the per-session game state shown next to the uploader.
type Scoreboard struct {
	Nickname       string  `json:"nickname"`
	Predictions    int     `json:"predictions"`
	Cats           int     `json:"cats"`
	Dogs           int     `json:"dogs"`
	CorrectGuesses int     `json:"correctGuesses"`
	WrongGuesses   int     `json:"wrongGuesses"`
	Streak         int     `json:"streak"`
	BestStreak     int     `json:"bestStreak"`
	Accuracy       float64 `json:"accuracy"`
}

// NewScoreboard converts a stored session into its public form.
func NewScoreboard(s *model.Session) *Scoreboard {
	if s == nil {
		return nil
	}
	return &Scoreboard{
		Nickname:       s.Nickname,
		Predictions:    s.Predictions,
		Cats:           s.Cats,
		Dogs:           s.Dogs,
		CorrectGuesses: s.CorrectGuesses,
		WrongGuesses:   s.WrongGuesses,
		Streak:         s.Streak,
		BestStreak:     s.BestStreak,
		Accuracy:       Accuracy(s.CorrectGuesses, s.WrongGuesses),
	}
}

// Accuracy is the share of correct guesses, 0 when nothing was guessed.
func Accuracy(correct, wrong int) float64 {
	if correct+wrong == 0 {
		return 0
	}
	return float64(correct) / float64(correct+wrong)
}
