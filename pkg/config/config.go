package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Source reads typed values from environment variables and an optional config file.
type Source struct {
	v *viper.Viper
}

// NewSource constructs a Source. When file is non-empty it must exist and parse.
func NewSource(file string) (Source, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if strings.TrimSpace(file) != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Source{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}
	return Source{v: v}, nil
}

// GetString retrieves a key or returns a fallback when unset.
func (s Source) GetString(key, fallback string) string {
	s.v.SetDefault(key, fallback)
	return strings.TrimSpace(s.v.GetString(key))
}

// GetInt retrieves a key as integer or returns fallback.
func (s Source) GetInt(key string, fallback int) int {
	s.v.SetDefault(key, fallback)
	return s.v.GetInt(key)
}

// GetBool retrieves a key as bool or returns fallback.
func (s Source) GetBool(key string, fallback bool) bool {
	s.v.SetDefault(key, fallback)
	return s.v.GetBool(key)
}

// GetList splits a comma separated value, dropping empty entries.
func (s Source) GetList(key string, fallback []string) []string {
	raw := s.GetString(key, "")
	if raw == "" {
		return fallback
	}
	raw = strings.Trim(raw, "[]")
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
