// Package secrets reads credentials from the OS keychain, falling back
// to environment variables for headless deployments.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "psychjobs"

// Well-known account names.
const (
	AccountSearchAppID  = "jobsearch:app_id"
	AccountSearchAppKey = "jobsearch:app_key"
)

// envFor maps a keyring account to its environment fallback, e.g.
// "jobsearch:app_id" -> "PSYCHJOBS_JOBSEARCH_APP_ID".
func envFor(account string) string {
	cleaned := strings.NewReplacer(":", "_", "-", "_", "@", "_", ".", "_").Replace(account)
	return "PSYCHJOBS_" + strings.ToUpper(cleaned)
}

// Get looks up a secret: keyring first, environment second.
func Get(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("secrets: account name is empty")
	}
	if pw, err := keyring.Get(KeyringService, account); err == nil && strings.TrimSpace(pw) != "" {
		return pw, nil
	}
	if v := strings.TrimSpace(os.Getenv(envFor(account))); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("secrets: %q not found in keychain or $%s", account, envFor(account))
}

func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("secrets: account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secrets: value is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("secrets: account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// IMAPAccount names the keychain entry for one mailbox.
func IMAPAccount(username, host string) string {
	return fmt.Sprintf("imap:%s@%s", username, host)
}
