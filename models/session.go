package models

// Event is a single conversation record appended to a session log file.
// One event per NDJSON line, append-only.
type Event struct {
	// TS is the unix timestamp of the event in seconds.
	TS int64 `json:"ts"`

	// Source identifies the producing frontend (e.g. "gateway").
	Source string `json:"source"`

	SessionID string `json:"session_id"`
	PersonID  string `json:"person_id"`
	CharID    string `json:"char_id"`

	ExternalUserID string `json:"external_user_id,omitempty"`

	// Sender is "user", "assistant" or "system".
	Sender string `json:"sender"`

	Text string `json:"text"`

	// Len is the length of Text in bytes.
	Len int `json:"len"`
}

// Identity is the result of resolving an external user id to a person.
// On any resolution failure the zero-cost default substitutes: an anonymous
// person id and the generic greeting term "there".
type Identity struct {
	PersonID      string `json:"person_id"`
	PreferredName string `json:"preferred_name"`
}
