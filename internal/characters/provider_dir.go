package characters

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cathy-ai/companion-gateway/internal/config"
	"github.com/cathy-ai/companion-gateway/internal/logger"
	"github.com/cathy-ai/companion-gateway/models"
)

// rawCharacter mirrors the on-disk JSON shape of a character definition.
// SystemPrompt and Background may hold either inline text or the name of a
// file under the prompt/info directory. Secrets never leave the loader.
type rawCharacter struct {
	Name        string   `json:"name"`
	Nickname    string   `json:"nickname"`
	Nicknames   []string `json:"nicknames"`
	Aliases     []string `json:"aliases"`
	Description string   `json:"description"`
	Model       string   `json:"model"`
	Greeting    string   `json:"greeting"`
	Avatar      string   `json:"avatar"`

	SystemPrompt string `json:"system_prompt"`
	Background   string `json:"character_background"`

	Secrets json.RawMessage `json:"secrets"`
}

// DirProvider reads character definitions from a directory of JSON files,
// one file per character, the file stem being the character id.
type DirProvider struct {
	dir       string
	promptDir string
	infoDir   string
	hostURL   string

	logger *logger.Logger
}

// NewDirProvider constructs a directory-backed character source from cfg.
// PromptDir and InfoDir default to <dir>/system_prompt and
// <dir>/character_info when unset.
func NewDirProvider(cfg config.Characters, logger *logger.Logger) *DirProvider {
	promptDir := cfg.PromptDir
	if promptDir == "" {
		promptDir = filepath.Join(cfg.Dir, "system_prompt")
	}
	infoDir := cfg.InfoDir
	if infoDir == "" {
		infoDir = filepath.Join(cfg.Dir, "character_info")
	}

	return &DirProvider{
		dir:       cfg.Dir,
		promptDir: promptDir,
		infoDir:   infoDir,
		hostURL:   strings.TrimRight(cfg.HostURL, "/"),
		logger:    logger,
	}
}

// List returns the roster view of every *.json file in the character
// directory, sorted by file name.
func (p *DirProvider) List(ctx context.Context) ([]models.CharacterSummary, error) {
	log := logger.FromContext(ctx)

	if _, err := os.Stat(p.dir); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCharacterDir, p.dir)
	}

	files, err := filepath.Glob(filepath.Join(p.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing character files failed: %w", err)
	}
	sort.Strings(files)

	summaries := make([]models.CharacterSummary, 0, len(files))
	for _, file := range files {
		id := strings.TrimSuffix(filepath.Base(file), ".json")

		raw, err := p.readRaw(file)
		if err != nil {
			log.Err(err).Str("char_id", id).Msg("skipping unreadable character file")
			continue
		}

		summaries = append(summaries, p.resolve(raw, id).Summary())
	}

	return summaries, nil
}

// Get loads and resolves a single character definition.
func (p *DirProvider) Get(ctx context.Context, id string, view models.CharacterView) (models.Character, error) {
	file := filepath.Join(p.dir, id+".json")
	if filepath.Base(file) != id+".json" {
		// id contained path separators
		return models.Character{}, ErrCharacterNotFound
	}

	raw, err := p.readRaw(file)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Character{}, ErrCharacterNotFound
		}
		return models.Character{}, err
	}

	character := p.resolve(raw, id)
	if view != models.ViewPrivate {
		character = character.Public()
	}

	return character, nil
}

func (p *DirProvider) readRaw(file string) (rawCharacter, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return rawCharacter{}, err
	}

	var raw rawCharacter
	if err = json.Unmarshal(data, &raw); err != nil {
		return rawCharacter{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(file), err)
	}

	return raw, nil
}

// resolve turns the on-disk shape into the served shape: prompt and
// background file references replaced by file content, aliases computed,
// avatar URL attached.
func (p *DirProvider) resolve(raw rawCharacter, id string) models.Character {
	name := raw.Name
	if name == "" {
		name = id
	}

	return models.Character{
		ID:           id,
		Name:         name,
		Nickname:     raw.Nickname,
		Description:  raw.Description,
		Model:        raw.Model,
		Greeting:     raw.Greeting,
		Avatar:       raw.Avatar,
		AvatarURL:    p.avatarURL(raw.Avatar),
		Aliases:      buildAliases(raw, id),
		SystemPrompt: maybeResolveFile(raw.SystemPrompt, p.promptDir),
		Background:   maybeResolveFile(raw.Background, p.infoDir),
	}
}

func (p *DirProvider) avatarURL(avatar string) string {
	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		return ""
	}
	return p.hostURL + "/avatars/" + avatar
}

// maybeResolveFile loads the referenced file from dir when value names an
// existing file there; otherwise the trimmed value is used as inline text.
func maybeResolveFile(value, dir string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	candidate := filepath.Join(dir, value)
	if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
		if content, err := os.ReadFile(candidate); err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return value
}

// buildAliases collects every name the character answers to: name, nickname,
// the optional nicknames/aliases lists, and always the id. Duplicates are
// removed case-insensitively, first spelling wins.
func buildAliases(raw rawCharacter, id string) []string {
	var aliases []string

	for _, v := range []string{raw.Name, raw.Nickname} {
		if v = strings.TrimSpace(v); v != "" {
			aliases = append(aliases, v)
		}
	}
	for _, list := range [][]string{raw.Nicknames, raw.Aliases} {
		for _, v := range list {
			if v = strings.TrimSpace(v); v != "" {
				aliases = append(aliases, v)
			}
		}
	}
	aliases = append(aliases, id)

	return dedupeCaseInsensitive(aliases)
}

func dedupeCaseInsensitive(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
