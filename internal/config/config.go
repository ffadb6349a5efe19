// Package config loads and persists the commitgen settings file.
//
// Load returns an immutable snapshot for one invocation: defaults, then the
// YAML file, then COMMITGEN_* environment overrides, then ${VAR} expansion of
// secrets. Update is the only writer; it edits the raw file contents so that
// environment overrides and expanded secrets are never written back.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/hoanghonghuy/commitgen/internal/errs"
	"github.com/hoanghonghuy/commitgen/internal/prompt"
)

const (
	EnvPrefix  = "COMMITGEN"
	PathEnv    = "COMMITGEN_CONFIG"
	dirName    = "commitgen"
	fileName   = "config.yaml"
	filePerm   = 0o600
	dirPerm    = 0o700
	configType = "yaml"
)

type AppConfig struct {
	AI      AIConfig      `yaml:"ai" mapstructure:"ai"`
	Git     GitConfig     `yaml:"git" mapstructure:"git"`
	UI      UIConfig      `yaml:"ui" mapstructure:"ui"`
	Prompts PromptsConfig `yaml:"prompts" mapstructure:"prompts"`
}

type AIConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider" validate:"required"`
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url" validate:"omitempty,url"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gt=0"`
}

type GitConfig struct {
	AutoStage           bool `yaml:"auto_stage" mapstructure:"auto_stage"`
	ConventionalCommits bool `yaml:"conventional_commits" mapstructure:"conventional_commits"`
	DiffContext         int  `yaml:"diff_context" mapstructure:"diff_context" validate:"gte=0"`
}

type UIConfig struct {
	Interactive bool   `yaml:"interactive" mapstructure:"interactive"`
	ShowDiff    bool   `yaml:"show_diff" mapstructure:"show_diff"`
	Editor      string `yaml:"editor,omitempty" mapstructure:"editor"`
}

type PromptsConfig struct {
	SystemPrompt string `yaml:"system_prompt" mapstructure:"system_prompt"`
}

// Default returns the configuration written on first run.
func Default() AppConfig {
	return AppConfig{
		AI: AIConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.1,
			MaxTokens:   150,
		},
		Git: GitConfig{
			AutoStage:           false,
			ConventionalCommits: true,
			DiffContext:         3,
		},
		UI: UIConfig{
			Interactive: true,
			ShowDiff:    true,
		},
		Prompts: PromptsConfig{SystemPrompt: prompt.DefaultSystemPrompt},
	}
}

var validate = validator.New()

// Validate checks field ranges. A temperature outside [0, 2] is reported as
// errs.ErrInvalidTemperature.
func (c AppConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.StructField() == "Temperature" {
				return errors.WithStack(errs.ErrInvalidTemperature)
			}
		}
	}
	return errors.Wrap(err, "invalid configuration")
}

// DefaultPath returns COMMITGEN_CONFIG when set, else
// <user config dir>/commitgen/config.yaml.
func DefaultPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(PathEnv)); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "", errors.WithHintf(errors.WithStack(errs.ErrConfigLocationUnavailable),
			"pass --config or set %s", PathEnv)
	}
	return filepath.Join(dir, dirName, fileName), nil
}

// Store reads and writes one configuration file.
type Store struct {
	Path string
	// DotEnv is loaded into the environment before ${VAR} expansion when it
	// exists. Empty disables it.
	DotEnv string
}

// NewStore uses path, or DefaultPath when path is empty.
func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Store{Path: path, DotEnv: ".env"}, nil
}

// Load returns the effective configuration, creating the file with defaults
// when it does not exist yet.
func (s *Store) Load() (AppConfig, error) {
	if err := s.ensure(); err != nil {
		return AppConfig{}, err
	}
	if err := s.loadDotEnv(); err != nil {
		return AppConfig{}, err
	}

	cfg, err := s.read(true)
	if err != nil {
		return AppConfig{}, err
	}
	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	cfg.AI.APIKey = expandEnv(cfg.AI.APIKey)
	cfg.UI.Editor = expandEnv(cfg.UI.Editor)

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Update applies fn to the stored configuration and saves the result. Nothing
// is written when fn or validation fails.
func (s *Store) Update(fn func(*AppConfig) error) (AppConfig, error) {
	if err := s.ensure(); err != nil {
		return AppConfig{}, err
	}
	cfg, err := s.read(false)
	if err != nil {
		return AppConfig{}, err
	}
	if err := fn(&cfg); err != nil {
		return AppConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	if err := s.Save(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Save writes cfg to a temporary file next to Path and renames it over Path.
func (s *Store) Save(cfg AppConfig) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return errs.Persistence(err, "create directory")
	}

	b, err := yaml.Marshal(cfg)
	if err != nil {
		return errs.Persistence(err, "encode")
	}

	tmp, err := os.CreateTemp(dir, "."+fileName+".*")
	if err != nil {
		return errs.Persistence(err, "write")
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(b); err != nil {
		return errs.Persistence(err, "write")
	}
	if err := tmp.Sync(); err != nil {
		return errs.Persistence(err, "write")
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return errs.Persistence(err, "write")
	}
	if err := tmp.Close(); err != nil {
		return errs.Persistence(err, "write")
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		return errs.Persistence(err, "replace")
	}
	tmp = nil
	return nil
}

func (s *Store) ensure() error {
	_, err := os.Stat(s.Path)
	switch {
	case err == nil:
		return nil
	case os.IsNotExist(err):
		return s.Save(Default())
	default:
		return errs.Persistence(err, "read")
	}
}

func (s *Store) loadDotEnv() error {
	if s.DotEnv == "" {
		return nil
	}
	if _, err := os.Stat(s.DotEnv); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(s.DotEnv); err != nil {
		return errs.Persistence(err, "read "+s.DotEnv)
	}
	return nil
}

// read decodes the file over the defaults. withEnv adds COMMITGEN_* overrides
// such as COMMITGEN_AI_MODEL.
func (s *Store) read(withEnv bool) (AppConfig, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetConfigFile(s.Path)
	v.SetConfigType(configType)
	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	if err := v.ReadInConfig(); err != nil {
		return AppConfig{}, errs.Persistence(err, "parse "+s.Path)
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, errs.Persistence(err, "decode "+s.Path)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d AppConfig) {
	v.SetDefault("ai.provider", d.AI.Provider)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.api_key", d.AI.APIKey)
	v.SetDefault("ai.base_url", d.AI.BaseURL)
	v.SetDefault("ai.temperature", d.AI.Temperature)
	v.SetDefault("ai.max_tokens", d.AI.MaxTokens)
	v.SetDefault("git.auto_stage", d.Git.AutoStage)
	v.SetDefault("git.conventional_commits", d.Git.ConventionalCommits)
	v.SetDefault("git.diff_context", d.Git.DiffContext)
	v.SetDefault("ui.interactive", d.UI.Interactive)
	v.SetDefault("ui.show_diff", d.UI.ShowDiff)
	v.SetDefault("ui.editor", d.UI.Editor)
	v.SetDefault("prompts.system_prompt", d.Prompts.SystemPrompt)
}

// expandEnv resolves a whole-value ${VAR} reference. Unset variables and
// any other value are returned unchanged.
func expandEnv(s string) string {
	if len(s) < 3 || !strings.HasPrefix(s, "${") || !strings.HasSuffix(s, "}") {
		return s
	}
	if v, ok := os.LookupEnv(s[2 : len(s)-1]); ok {
		return v
	}
	return s
}
