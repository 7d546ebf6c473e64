package dto

// LeaderboardEntry is one row of the leaderboard. Session IDs are never exposed.
type LeaderboardEntry struct {
	Rank           int     `json:"rank"`
	Nickname       string  `json:"nickname"`
	CorrectGuesses int     `json:"correctGuesses"`
	WrongGuesses   int     `json:"wrongGuesses"`
	BestStreak     int     `json:"bestStreak"`
	Accuracy       float64 `json:"accuracy"`
	You            bool    `json:"you"`
}
