// Package config loads the gateway configuration from environment
// variables, command-line flags, and an optional JSON file, merging the
// sources with mergo (first non-zero value wins, in that order).
//
// The environment surface deliberately mirrors the deployment it replaces:
// CHAT_API_URL, MODELS_API_URL, EMOTION_API_URL, IDENTITY_API_URL and their
// *_API_KEY / *_TIMEOUT companions, CHAR_DIR and friends for character
// definitions, STORAGE_DATABASE_URI for the credential store, and the
// REGISTRATION_* / USER_ADMIN_API_KEY / BOOTSTRAP_ADMIN_* auth knobs.
// No default leaks a secret: every key defaults to empty.
package config
