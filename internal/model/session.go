package model

import "time"

// Session is one visitor's game state, identified by the session cookie.
type Session struct {
	ID             string    `json:"id"`
	Nickname       string    `json:"nickname"`
	Predictions    int       `json:"predictions"`
	Cats           int       `json:"cats"`
	Dogs           int       `json:"dogs"`
	CorrectGuesses int       `json:"correctGuesses"`
	WrongGuesses   int       `json:"wrongGuesses"`
	Streak         int       `json:"streak"`
	BestStreak     int       `json:"bestStreak"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
