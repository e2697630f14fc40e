package models

// CharacterView selects how much of a character definition is exposed.
type CharacterView string

const (
	// ViewPublic excludes prompt and background text.
	ViewPublic CharacterView = "public"

	// ViewPrivate includes the resolved system prompt and background.
	ViewPrivate CharacterView = "private"
)

// CharacterSummary is the lightweight list view of a character definition.
// It never carries prompt text.
type CharacterSummary struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Nickname  string   `json:"nickname,omitempty"`
	Model     string   `json:"model,omitempty"`
	Greeting  string   `json:"greeting,omitempty"`
	Avatar    string   `json:"avatar,omitempty"`
	AvatarURL string   `json:"avatar_url,omitempty"`
	Aliases   []string `json:"aliases,omitempty"`
}

// Character is the full character definition loaded from a JSON file or a
// remote character source. SystemPrompt and Background hold resolved text:
// when the raw field names a file under the prompt/info directory the file
// content replaces the reference, otherwise the raw value is used inline.
type Character struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Nickname    string   `json:"nickname,omitempty"`
	Description string   `json:"description,omitempty"`
	Model       string   `json:"model,omitempty"`
	Greeting    string   `json:"greeting,omitempty"`
	Avatar      string   `json:"avatar,omitempty"`
	AvatarURL   string   `json:"avatar_url,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`

	// SystemPrompt is only populated in the private view.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Background is only populated in the private view.
	Background string `json:"character_background,omitempty"`
}

// Summary projects the full character definition onto its list view.
func (c Character) Summary() CharacterSummary {
	return CharacterSummary{
		ID:        c.ID,
		Name:      c.Name,
		Nickname:  c.Nickname,
		Model:     c.Model,
		Greeting:  c.Greeting,
		Avatar:    c.Avatar,
		AvatarURL: c.AvatarURL,
		Aliases:   c.Aliases,
	}
}

// Public returns a copy of the character with prompt material stripped.
func (c Character) Public() Character {
	c.SystemPrompt = ""
	c.Background = ""
	return c
}

// Label returns the short author label shown next to assistant replies:
// the nickname when present, otherwise the first word of the name.
func (c Character) Label() string {
	if c.Nickname != "" {
		return c.Nickname
	}
	for i := 0; i < len(c.Name); i++ {
		if c.Name[i] == ' ' {
			return c.Name[:i]
		}
	}
	return c.Name
}
