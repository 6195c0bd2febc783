// Package singleinstance keeps two interceptors from running for the same
// user; both would open every application.
package singleinstance

import (
	"errors"
	"os"
	"os/user"
	"regexp"
	"strings"
)

// ErrAlreadyRunning is returned by TryLock when another instance holds the lock.
var ErrAlreadyRunning = errors.New("another shorty instance is already running")

var invalidUsernameRune = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// DefaultLockName returns the per-user lock identifier.
func DefaultLockName() string {
	return "shorty-" + sanitizeUsername(currentUsername())
}

func currentUsername() string {
	for _, env := range []string{"USERNAME", "USER"} {
		if name := strings.TrimSpace(os.Getenv(env)); name != "" {
			return name
		}
	}
	if current, err := user.Current(); err == nil {
		return current.Username
	}
	return ""
}

// sanitizeUsername normalizes a user name for use in mutex and file names.
func sanitizeUsername(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return invalidUsernameRune.ReplaceAllString(value, "_")
}
