package models

// UserSnapshot is the on-disk record for one user.
type UserSnapshot struct {
	ID   string         `json:"id"`
	Name string         `json:"name,omitempty"`
	Days map[string]int `json:"days"`
}

// Storage is the snapshot wire format. Users keep registration order so a
// restore preserves leaderboard tie-breaking.
type Storage struct {
	Users []*UserSnapshot `json:"users"`
}
