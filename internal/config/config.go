package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// companion gateway. It aggregates all sub-configurations and is populated
// by merging values from environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings: token parameters, the admin
	// API key, registration toggles, and bootstrap admin credentials.
	App App `envPrefix:"APP_"`

	// Server holds network address and timeout settings for the HTTP server.
	Server Server `envPrefix:"SERVER_"`

	// Storage holds the credential database DSN and the state directory
	// used for session logs and the activity file.
	Storage Storage `envPrefix:"STORAGE_"`

	// Characters configures where character definitions come from: a local
	// directory tree, or a remote character API revalidated via ETag.
	Characters Characters

	// Upstream configures the external model, emotion, and identity
	// endpoints together with their per-call timeouts.
	Upstream Upstream

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values controlling auth,
// registration policy, and the admin surface.
type App struct {
	// TokenSignKey is the secret key used to sign and verify JWT session
	// tokens. Must be kept confidential.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued token and
	// validated on every authenticated request.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER" envDefault:"companion-gateway"`

	// TokenDuration specifies how long a session token remains valid
	// (e.g. "12h", "30m").
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION" envDefault:"12h"`

	// AdminKey guards the /auth/admin endpoints via the x-admin-key header.
	// An empty value disables the whole admin surface.
	// Env: USER_ADMIN_API_KEY
	AdminKey string `env:"USER_ADMIN_API_KEY"`

	// RegistrationEnabled toggles self-registration.
	// Env: REGISTRATION_ENABLED
	RegistrationEnabled bool `env:"REGISTRATION_ENABLED" envDefault:"true"`

	// RegistrationRequireInvite requires a valid invite code on register.
	// Env: REGISTRATION_REQUIRE_INVITE
	RegistrationRequireInvite bool `env:"REGISTRATION_REQUIRE_INVITE" envDefault:"true"`

	// BootstrapAdminUsername and BootstrapAdminPassword, when both set,
	// create the initial admin account on startup if the user table is
	// empty. Ignored otherwise.
	BootstrapAdminUsername string `env:"BOOTSTRAP_ADMIN_USERNAME"`
	BootstrapAdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the TCP address on which the HTTP server listens,
	// in "host:port" format (e.g. "0.0.0.0:8000").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single non-streaming inbound request.
	// Streaming chat responses are bounded by the chat timeout instead.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage holds persistence settings: the credential database and the state
// directory for session logs and watchdog activity tracking.
type Storage struct {
	// DSN selects the credential store backend. A "postgres://" scheme
	// opens a PostgreSQL connection via pgx; anything else is treated as a
	// SQLite file path.
	// Env: STORAGE_DATABASE_URI
	DSN string `env:"DATABASE_URI"`

	// StateDir is the root directory for session NDJSON logs and the
	// last-activity file.
	// Env: STORAGE_STATE_DIR
	StateDir string `env:"STATE_DIR" envDefault:"/state"`
}

// Characters configures the character resolver. When APIURL is set the
// gateway revalidates against the remote source with ETags; otherwise
// definitions are read from Dir.
type Characters struct {
	// Dir contains one JSON file per character.
	// Env: CHAR_DIR
	Dir string `env:"CHAR_DIR"`

	// PromptDir is searched when a character's system_prompt field names a
	// file instead of holding inline text. Defaults to <Dir>/system_prompt.
	// Env: PROMPT_DIR
	PromptDir string `env:"PROMPT_DIR"`

	// InfoDir is the analogous lookup directory for character_background.
	// Defaults to <Dir>/character_info.
	// Env: INFO_DIR
	InfoDir string `env:"INFO_DIR"`

	// AvatarDir holds the avatar images served under /avatars/.
	// Env: AVATAR_DIR
	AvatarDir string `env:"AVATAR_DIR"`

	// APIURL, when set, switches the resolver to the remote character API.
	// Env: CHAR_API_URL
	APIURL string `env:"CHAR_API_URL"`

	// APIKey is sent as x-api-key to the remote character API.
	// Env: CHAR_API_KEY
	APIKey string `env:"CHAR_API_KEY"`

	// HostURL is the externally visible base URL used when building
	// absolute avatar URLs (e.g. "http://gateway.local:8000").
	// Env: HOST_URL
	HostURL string `env:"HOST_URL"`
}

// Upstream configures the external collaborators. Identity and emotion
// failures degrade gracefully; chat and models failures surface to the user.
type Upstream struct {
	ChatAPIURL  string        `env:"CHAT_API_URL"`
	ChatAPIKey  string        `env:"CHAT_API_KEY"`
	ChatTimeout time.Duration `env:"CHAT_TIMEOUT" envDefault:"120s"`

	ModelsAPIURL  string        `env:"MODELS_API_URL"`
	ModelsAPIKey  string        `env:"MODELS_API_KEY"`
	ModelsTimeout time.Duration `env:"MODELS_TIMEOUT" envDefault:"10s"`

	EmotionAPIURL  string        `env:"EMOTION_API_URL"`
	EmotionAPIKey  string        `env:"EMOTION_API_KEY"`
	EmotionTimeout time.Duration `env:"EMOTION_TIMEOUT" envDefault:"10s"`
	EmotionEnabled bool          `env:"EMOTION_ENABLED"`

	IdentityAPIURL  string        `env:"IDENTITY_API_URL"`
	IdentityAPIKey  string        `env:"IDENTITY_API_KEY"`
	IdentityTimeout time.Duration `env:"IDENTITY_TIMEOUT" envDefault:"10s"`
}

// GetStructuredConfig loads, merges, and validates the gateway configuration
// from all available sources in the following priority order (first source
// wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
