// ABOUTME: Session token cache for warden-cli
// ABOUTME: Stores the token 0600 under $XDG_STATE_HOME/warden; WARDEN_TOKEN overrides it

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var errNotLoggedIn = errors.New("not logged in (run warden-cli login USERNAME)")

// defaultTokenPath returns $XDG_STATE_HOME/warden/token, falling back to
// ~/.local/state/warden/token.
func defaultTokenPath() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locating home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "warden", "token"), nil
}

func (o *cliOptions) tokenPath() (string, error) {
	if o.tokenFile != "" {
		return o.tokenFile, nil
	}
	return defaultTokenPath()
}

// loadToken returns $WARDEN_TOKEN if set, otherwise the cached token.
func (o *cliOptions) loadToken() (string, error) {
	if token := os.Getenv(envToken); token != "" {
		return token, nil
	}

	path, err := o.tokenPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", errNotLoggedIn
	}
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", errNotLoggedIn
	}
	return token, nil
}

func (o *cliOptions) saveToken(token string) (string, error) {
	path, err := o.tokenPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("creating token directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0600); err != nil {
		return "", fmt.Errorf("writing token file: %w", err)
	}
	return path, nil
}

// removeToken deletes the cached token. A missing file is not an error.
func (o *cliOptions) removeToken() error {
	path, err := o.tokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}
