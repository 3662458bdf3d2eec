package domain

// DailySummary is what a feature tracker knows about the active session.
type DailySummary struct {
	Feature      Feature  `json:"feature"`
	UserID       string   `json:"userId"`
	Guest        bool     `json:"guest"`
	Date         string   `json:"date"`
	CompletedIDs []string `json:"completedIds"`
}
