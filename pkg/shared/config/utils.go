package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/scan-io-git/portal-lens/pkg/shared/files"
)

// GetBoolValue retrieves a boolean value from a nested struct based on a dot-separated path.
// It returns the provided defaultValue if the specified field is not explicitly set or is nil.
func GetBoolValue(config interface{}, fieldPath string, defaultValue bool) bool {
	if config == nil {
		return defaultValue
	}

	fields := strings.Split(fieldPath, ".")
	val := reflect.ValueOf(config)

	for _, field := range fields {
		if val.Kind() == reflect.Ptr {
			if val.IsNil() {
				return defaultValue
			}
			val = val.Elem()
		}
		if val.Kind() != reflect.Struct {
			return defaultValue
		}

		val = val.FieldByName(field)
		if !val.IsValid() {
			return defaultValue
		}
	}

	if val.Kind() == reflect.Ptr && !val.IsNil() {
		return val.Elem().Bool()
	} else if val.Kind() == reflect.Bool {
		return val.Bool()
	}

	return defaultValue
}

// SetThen provides a utility to select the first value if set, otherwise defaults.
func SetThen[T any](value T, defaultValue T) T {
	if reflect.ValueOf(value).IsZero() {
		return defaultValue
	}
	return value
}

// GetHome returns the tool home folder: $PORTAL_LENS_HOME or ~/.portal-lens.
func GetHome() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return files.ExpandPath(home)
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userHome, ".portal-lens"), nil
}

// GetStatePath returns the configured state database path or the default under the home folder.
func GetStatePath(cfg *Config) (string, error) {
	if cfg != nil && cfg.State.Path != "" {
		return files.ExpandPath(cfg.State.Path)
	}
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "state.db"), nil
}

// GetArtifactsHome returns the folder command artifacts are written to.
func GetArtifactsHome() (string, error) {
	home, err := GetHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "artifacts"), nil
}
