package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	UserID    string
	UserFile  string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("WHAM_SERVER", "http://localhost:8080"),
		UserID:    os.Getenv("WHAM_USER"),
		UserFile:  getEnvOrDefault("WHAM_USER_FILE", defaultUserFile()),
		Output:    "text",
		Verbose:   false,
	}
}

// LoadUser reads the stored user id unless one was given explicitly
func (c *Config) LoadUser() error {
	if c.UserID != "" {
		return nil
	}

	data, err := os.ReadFile(c.UserFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // First run on this device
		}
		return err
	}

	c.UserID = strings.TrimSpace(string(data))
	return nil
}

// SaveUser stores the user id on this device, replacing any previous one
func (c *Config) SaveUser(userID string) error {
	c.UserID = userID

	dir := filepath.Dir(c.UserFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.UserFile, []byte(userID+"\n"), 0600)
}

// EnsureUser returns the stored user id, minting and saving a new one on
// first use
func (c *Config) EnsureUser() (string, error) {
	if c.UserID != "" {
		return c.UserID, nil
	}
	userID := uuid.NewString()
	if err := c.SaveUser(userID); err != nil {
		return "", fmt.Errorf("failed to save user id: %w", err)
	}
	return userID, nil
}

func defaultUserFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".whamctl/user"
	}
	return filepath.Join(home, ".whamctl", "user")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
