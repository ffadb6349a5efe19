package config

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/hoanghonghuy/commitgen/internal/ai"
	"github.com/hoanghonghuy/commitgen/internal/errs"
)

func (s *Store) SetProvider(name string) (AppConfig, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !ai.IsKnown(name) {
		return AppConfig{}, errs.UnsupportedProvider(name)
	}
	return s.Update(func(c *AppConfig) error {
		c.AI.Provider = name
		return nil
	})
}

// SetAPIKey stores key verbatim, so a ${VAR} reference stays a reference.
func (s *Store) SetAPIKey(key string) (AppConfig, error) {
	return s.Update(func(c *AppConfig) error {
		c.AI.APIKey = strings.TrimSpace(key)
		return nil
	})
}

func (s *Store) SetModel(model string) (AppConfig, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return AppConfig{}, errors.New("model name must not be empty")
	}
	return s.Update(func(c *AppConfig) error {
		c.AI.Model = model
		return nil
	})
}

// SetTemperature rejects values outside [0, 2] before touching the file.
func (s *Store) SetTemperature(t float64) (AppConfig, error) {
	if t < 0 || t > 2 {
		return AppConfig{}, errors.WithStack(errs.ErrInvalidTemperature)
	}
	return s.Update(func(c *AppConfig) error {
		c.AI.Temperature = t
		return nil
	})
}

func (s *Store) SetMaxTokens(n int) (AppConfig, error) {
	return s.Update(func(c *AppConfig) error {
		c.AI.MaxTokens = n
		return nil
	})
}

func (s *Store) SetInteractive(on bool) (AppConfig, error) {
	return s.Update(func(c *AppConfig) error {
		c.UI.Interactive = on
		return nil
	})
}

func (s *Store) SetConventional(on bool) (AppConfig, error) {
	return s.Update(func(c *AppConfig) error {
		c.Git.ConventionalCommits = on
		return nil
	})
}

func (s *Store) SetShowDiff(on bool) (AppConfig, error) {
	return s.Update(func(c *AppConfig) error {
		c.UI.ShowDiff = on
		return nil
	})
}
