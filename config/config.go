package config

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Qiskit/qiskit-ibm-runtime-go/qpy"
	"github.com/Qiskit/qiskit-ibm-runtime-go/runtime"
)

const (
	FileName = "qkrt.yaml"

	defaultTimeout       = 60 * time.Second
	defaultShots         = 1024
	defaultQiskitVersion = "2.1.0"
	defaultPollInterval  = 5 * time.Second
)

type AccountConfig struct {
	// File is the saved accounts file, $HOME/.qiskit/qiskit-ibm.json if empty.
	File string `yaml:"file"`
	Name string `yaml:"name"`
}

type APIConfig struct {
	IAMURL    string        `yaml:"iamUrl"`
	SearchURL string        `yaml:"searchUrl"`
	URL       string        `yaml:"url"`
	Version   string        `yaml:"version"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheSize int           `yaml:"targetCacheSize"`
}

type QPYConfig struct {
	Version          uint8  `yaml:"version"`
	QiskitVersion    string `yaml:"qiskitVersion"`
	SymbolicEncoding string `yaml:"symbolicEncoding"`
}

type SamplerConfig struct {
	Backend      string        `yaml:"backend"`
	Runtime      string        `yaml:"runtime"`
	Tags         []string      `yaml:"tags"`
	Shots        int           `yaml:"shots"`
	PollInterval time.Duration `yaml:"pollInterval"`
}

type Config struct {
	Account AccountConfig `yaml:"account"`
	API     APIConfig     `yaml:"api"`
	QPY     QPYConfig     `yaml:"qpy"`
	Sampler SamplerConfig `yaml:"sampler"`
}

// WithDefaults returns a copy of the Config with any missing fields set to
// their default values.
func (c Config) WithDefaults() Config {
	cpy := c
	if cpy.API.IAMURL == "" {
		cpy.API.IAMURL = runtime.DefaultIAMURL
	}
	if cpy.API.SearchURL == "" {
		cpy.API.SearchURL = runtime.DefaultSearchURL
	}
	if cpy.API.URL == "" {
		cpy.API.URL = runtime.DefaultAPIURL
	}
	if cpy.API.Version == "" {
		cpy.API.Version = runtime.DefaultAPIVersion
	}
	if cpy.API.Timeout == 0 {
		cpy.API.Timeout = defaultTimeout
	}
	if cpy.QPY.Version == 0 {
		cpy.QPY.Version = qpy.CurrentVersion
	}
	if cpy.QPY.QiskitVersion == "" {
		cpy.QPY.QiskitVersion = defaultQiskitVersion
	}
	if cpy.QPY.SymbolicEncoding == "" {
		cpy.QPY.SymbolicEncoding = "sympy"
	}
	if cpy.Sampler.Shots == 0 {
		cpy.Sampler.Shots = defaultShots
	}
	if cpy.Sampler.PollInterval == 0 {
		cpy.Sampler.PollInterval = defaultPollInterval
	}
	return cpy
}

// env overrides, applied after the file is read.
var envOverrides = map[string]func(c *Config, v string) error{
	"QKRT_ACCOUNT_FILE": func(c *Config, v string) error { c.Account.File = v; return nil },
	"QKRT_ACCOUNT_NAME": func(c *Config, v string) error { c.Account.Name = v; return nil },
	"QKRT_API_URL":      func(c *Config, v string) error { c.API.URL = v; return nil },
	"QKRT_BACKEND":      func(c *Config, v string) error { c.Sampler.Backend = v; return nil },
	"QKRT_SHOTS": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "QKRT_SHOTS")
		}
		c.Sampler.Shots = n
		return nil
	},
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for key, set := range envOverrides {
		if v, ok := lookup(key); ok && v != "" {
			if err := set(c, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// DefaultPath returns ./qkrt.yaml when present, else $HOME/.qiskit/qkrt.yaml.
func DefaultPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, ".qiskit", FileName)
}

// Load reads the config at path. An empty path uses DefaultPath and
// tolerates a missing file.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, errors.Wrap(err, "read config")
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	out := cfg.WithDefaults()
	if _, err := out.DumpOptions(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "write config")
}

// DumpOptions converts the qpy section.
func (c *Config) DumpOptions() (qpy.DumpOptions, error) {
	opts := qpy.DumpOptions{Version: c.QPY.Version}
	if c.QPY.Version < qpy.MinVersion || c.QPY.Version > qpy.MaxVersion {
		return opts, errors.Wrapf(qpy.ErrUnsupportedVersion, "qpy version %d", c.QPY.Version)
	}
	parts := strings.Split(c.QPY.QiskitVersion, ".")
	if len(parts) != 3 {
		return opts, errors.Errorf("qiskit version %q is not major.minor.patch", c.QPY.QiskitVersion)
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return opts, errors.Wrapf(err, "qiskit version %q", c.QPY.QiskitVersion)
		}
		opts.QiskitVersion[i] = uint8(v)
	}
	switch strings.ToLower(c.QPY.SymbolicEncoding) {
	case "sympy", "":
		opts.SymbolicEncoding = qpy.SymbolicEncodingSympy
	case "symengine":
		opts.SymbolicEncoding = qpy.SymbolicEncodingSymengine
	default:
		return opts, errors.Errorf("unknown symbolic encoding %q", c.QPY.SymbolicEncoding)
	}
	return opts, nil
}

// ServiceOptions converts the account and api sections.
func (c *Config) ServiceOptions() runtime.Options {
	return runtime.Options{
		AccountFile:     c.Account.File,
		AccountName:     c.Account.Name,
		IAMURL:          c.API.IAMURL,
		SearchURL:       c.API.SearchURL,
		APIURL:          c.API.URL,
		APIVersion:      c.API.Version,
		TargetCacheSize: c.API.CacheSize,
		HTTPClient:      &http.Client{Timeout: c.API.Timeout},
	}
}

// SamplerOptions converts the sampler section.
func (c *Config) SamplerOptions() runtime.SamplerOptions {
	return runtime.SamplerOptions{
		Backend: c.Sampler.Backend,
		Runtime: c.Sampler.Runtime,
		Tags:    c.Sampler.Tags,
		Shots:   c.Sampler.Shots,
	}
}
