package models

// OKResponse is the generic success envelope used by the auth and admin
// endpoints: {"ok": true, "message": "..."}.
type OKResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// LoginResponse is returned by POST /auth/login on success.
type LoginResponse struct {
	OK   bool   `json:"ok"`
	Role string `json:"role"`
}

// InviteResponse is returned by POST /auth/admin/invite.
type InviteResponse struct {
	OK   bool   `json:"ok"`
	Code string `json:"code"`
}

// UsersResponse is returned by GET /auth/admin/users.
type UsersResponse struct {
	OK    bool   `json:"ok"`
	Users []User `json:"users"`
}

// CharactersResponse is the body of GET /characters.
type CharactersResponse struct {
	Characters []CharacterSummary `json:"characters"`
}

// SessionResponse is returned by POST /api/chat/session. It carries
// everything the client needs to start a conversation: the session id, the
// public character data, the greeting starter and the resolved name.
type SessionResponse struct {
	SessionID     string    `json:"session_id"`
	Character     Character `json:"character"`
	Greeting      string    `json:"greeting,omitempty"`
	PreferredName string    `json:"preferred_name"`
}

// WhoamiResponse mirrors the /whoami debug command of the chat frontend.
type WhoamiResponse struct {
	ExternalUserID string `json:"external_user_id"`
	PersonID       string `json:"person_id"`
	PreferredName  string `json:"preferred_name"`
}
