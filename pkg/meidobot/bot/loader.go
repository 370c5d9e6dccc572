// loader.go handles loading configuration from YAML files with
// credential resolution via environment variables, .env files and the
// OS keyring.
package bot

import (
	"fmt"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches environment variable references in config
// values:
//   - ${VAR_NAME}           - simple variable
//   - ${VAR_NAME:-default}  - default value if not set
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// LoadConfigFromFile reads and parses a YAML configuration file.
// Loads .env files first and expands ${VAR} references before
// parsing. Secrets missing from the file are resolved from the
// environment and the OS keyring.
func LoadConfigFromFile(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := ParseConfig([]byte(expandEnvVars(string(data))))
	if err != nil {
		return nil, err
	}

	ResolveSecrets(cfg)
	return cfg, nil
}

// ParseConfig parses YAML bytes into a Config, starting from defaults
// and overlaying values from the YAML.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	return cfg, nil
}

// loadEnvFiles loads .env files from the working directory, silently
// ignoring missing files.
func loadEnvFiles() {
	_ = godotenv.Load()
}

// expandEnvVars substitutes ${VAR} and ${VAR:-default} references.
func expandEnvVars(in string) string {
	return envVarPattern.ReplaceAllStringFunc(in, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if val, ok := os.LookupEnv(groups[1]); ok {
			return val
		}
		return groups[2]
	})
}

// ResolveSecrets fills empty secrets from the environment and the OS
// keyring. Priority: environment variable, then keyring, then the
// value already in the config.
func ResolveSecrets(cfg *Config) {
	if cfg.API.APIKey == "" {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.API.APIKey = key
		} else if key := GetKeyring(keyringAPIKey); key != "" {
			cfg.API.APIKey = key
		}
	}
	if cfg.TTS.APIKey == "" {
		// The speech provider shares the completion provider's key
		// unless one is configured explicitly.
		cfg.TTS.APIKey = cfg.API.APIKey
	}
	if cfg.Discord.Token == "" {
		if tok := os.Getenv("DISCORD_TOKEN"); tok != "" {
			cfg.Discord.Token = tok
		} else if tok := GetKeyring(keyringDiscordToken); tok != "" {
			cfg.Discord.Token = tok
		}
	}
}
