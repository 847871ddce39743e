package events

// CreateEventRequest is the payload for logging a new event. The timestamp is
// an optional string so clients may omit it (defaulting to now) or send a
// naive local-format value; see ParseTimestamp for accepted layouts.
type CreateEventRequest struct {
	UserID      int     `json:"user_id" example:"1"`
	GroupID     *int    `json:"group_id,omitempty" example:"3"`
	Timestamp   *string `json:"timestamp,omitempty" example:"2024-05-04T09:30:00Z"`
	Duration    *int    `json:"duration,omitempty" example:"120"`
	Consistency string  `json:"consistency" example:"Normal"`
	Notes       *string `json:"notes,omitempty"`
}

// RankingEntry is one row of the leaderboard: a user and their total event
// count. The ranking endpoint returns these sorted by count descending.
type RankingEntry struct {
	Username string `json:"username" example:"alice"`
	Count    int64  `json:"count" example:"42"`
}

// HallOfFameEntry names the holder of one superlative.
type HallOfFameEntry struct {
	Username string `json:"username" example:"alice"`
	Count    int64  `json:"count" example:"7"`
}

// HallOfFame collects the three superlatives. A nil entry means no event
// qualifies for that category yet.
type HallOfFame struct {
	// Monstruoso is the user with the most Jurásica events.
	Monstruoso *HallOfFameEntry `json:"monstruoso"`
	// Escopetas is the user with the most Espurruteo events.
	Escopetas *HallOfFameEntry `json:"escopetas"`
	// Timido is the user with the fewest events overall, among users with at
	// least one event.
	Timido *HallOfFameEntry `json:"timido"`
}

// AverageEntry reports a user's mean events per calendar day since their
// first event.
type AverageEntry struct {
	Username string  `json:"username" example:"alice"`
	Average  float64 `json:"average" example:"1.33"`
	Days     int     `json:"days" example:"3"`
	Total    int64   `json:"total" example:"4"`
}

// StatsResponse is the payload of GET /events/stats.
type StatsResponse struct {
	HallOfFame HallOfFame     `json:"hall_of_fame"`
	Averages   []AverageEntry `json:"averages"`
}

// DeleteResponse acknowledges a successful delete.
type DeleteResponse struct {
	OK bool `json:"ok" example:"true"`
}
