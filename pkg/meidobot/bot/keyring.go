// keyring.go provides credential storage using the operating system's
// native keyring (Linux: Secret Service, macOS: Keychain, Windows:
// Credential Manager). Environment variables take precedence; the
// keyring is the fallback for machines without a configured shell
// environment.
package bot

import (
	"github.com/zalando/go-keyring"
)

const (
	// keyringService is the service name used in the OS keyring.
	keyringService = "meidobot"

	// keyringAPIKey is the key name for the provider API key.
	keyringAPIKey = "api_key"

	// keyringDiscordToken is the key name for the Discord bot token.
	keyringDiscordToken = "discord_token"
)

// StoreKeyring saves a secret to the OS keyring.
func StoreKeyring(key, value string) error {
	return keyring.Set(keyringService, key, value)
}

// GetKeyring retrieves a secret from the OS keyring. Returns an empty
// string if the keyring is unavailable or the key is not set.
func GetKeyring(key string) string {
	val, err := keyring.Get(keyringService, key)
	if err != nil {
		return ""
	}
	return val
}

// DeleteKeyring removes a secret from the OS keyring.
func DeleteKeyring(key string) error {
	return keyring.Delete(keyringService, key)
}
