package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d credential database DSN (sqlite path or postgres:// URI)
//	-state-dir state directory for session logs and the activity file
//	-char-dir directory with character JSON definitions
//	-char-api-url remote character API base URL
//	-chat-url upstream chat endpoint URL
//	-models-url upstream models endpoint URL
//	-c/-config json file path with configs
//	-token-sign-key token signing key
//	-token-duration token duration (e.g., "12h", "30m")
//	-admin-key admin API key for the /auth/admin endpoints
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var stateDir string
	var charDir string
	var charAPIURL string
	var chatURL string
	var modelsURL string
	var jsonConfigPath string
	var tokenSignKey string
	var tokenDuration time.Duration
	var adminKey string

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Credential database DSN")
	flag.StringVar(&stateDir, "state-dir", "", "State directory")
	flag.StringVar(&charDir, "char-dir", "", "Character definitions directory")
	flag.StringVar(&charAPIURL, "char-api-url", "", "Remote character API base URL")
	flag.StringVar(&chatURL, "chat-url", "", "Upstream chat endpoint URL")
	flag.StringVar(&modelsURL, "models-url", "", "Upstream models endpoint URL")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	flag.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 12h, 30m)")
	flag.StringVar(&adminKey, "admin-key", "", "Admin API key")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			TokenSignKey:  tokenSignKey,
			TokenDuration: tokenDuration,
			AdminKey:      adminKey,
		},
		Server: Server{
			HTTPAddress: serverAddress.String(),
		},
		Storage: Storage{
			DSN:      databaseDSN,
			StateDir: stateDir,
		},
		Characters: Characters{
			Dir:    charDir,
			APIURL: charAPIURL,
		},
		Upstream: Upstream{
			ChatAPIURL:   chatURL,
			ModelsAPIURL: modelsURL,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns the empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
