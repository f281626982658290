package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/Wa4h1h/tftp-codec/pkg/utils"
)

const (
	EnvConfig       = "TFTP_CONFIG"
	EnvPort         = "TFTP_PORT"
	EnvLogLevel     = "LOG_LEVEL"
	EnvReadTimeout  = "READ_TIMEOUT"
	EnvWriteTimeout = "WRITE_TIMEOUT"
	EnvNumTries     = "NUM_TRIES"
	EnvBaseDir      = "TFTP_BASE_DIR"
	EnvMetricsAddr  = "METRICS_ADDR"
	EnvConsole      = "TFTP_CONSOLE"
)

type ServerConfig struct {
	Port         string `toml:"port"`
	LogLevel     string `toml:"log_level"`
	ReadTimeout  uint   `toml:"read_timeout"`
	WriteTimeout uint   `toml:"write_timeout"`
	NumTries     uint   `toml:"num_tries"`
	BaseDir      string `toml:"base_dir"`
	MetricsAddr  string `toml:"metrics_addr"`
	Console      bool   `toml:"console"`
}

func Default() ServerConfig {
	return ServerConfig{
		Port:         "69",
		LogLevel:     "info",
		ReadTimeout:  5,
		WriteTimeout: 5,
		NumTries:     5,
		BaseDir:      utils.UserHomeDirPath(),
	}
}

// Load reads the optional TOML file at path (empty skips it), applies env
// overrides on top and validates the result.
func Load(path string) (ServerConfig, error) {
	cfg := Default()

	if path != "" {
		if err := loadToml(path, &cfg); err != nil {
			return ServerConfig{}, err
		}
	}

	applyEnvOverrides(&cfg)

	if err := Validate(cfg); err != nil {
		return ServerConfig{}, err
	}

	return cfg, nil
}

func Validate(cfg ServerConfig) error {
	port, err := strconv.ParseUint(cfg.Port, 10, 16)
	if err != nil {
		return fmt.Errorf("%w: port %q: %w", utils.ErrInvalidConfig, cfg.Port, err)
	}

	if port == 0 {
		return fmt.Errorf("%w: port must be non-zero", utils.ErrInvalidConfig)
	}

	if cfg.NumTries == 0 {
		return fmt.Errorf("%w: num_tries must be at least 1", utils.ErrInvalidConfig)
	}

	if cfg.ReadTimeout == 0 || cfg.WriteTimeout == 0 {
		return fmt.Errorf("%w: timeouts must be at least 1 second", utils.ErrInvalidConfig)
	}

	if cfg.BaseDir == "" {
		return fmt.Errorf("%w: base_dir is required", utils.ErrInvalidConfig)
	}

	return nil
}

func loadToml(path string, out *ServerConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}

	md, err := toml.Decode(string(data), out)
	if err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%w: unknown keys in %s: %v", utils.ErrInvalidConfig, path, undecoded)
	}

	return nil
}

func applyEnvOverrides(cfg *ServerConfig) {
	if v, ok := utils.LookupEnv[string](EnvPort); ok {
		cfg.Port = v
	}

	if v, ok := utils.LookupEnv[string](EnvLogLevel); ok {
		cfg.LogLevel = v
	}

	if v, ok := utils.LookupEnv[uint](EnvReadTimeout); ok {
		cfg.ReadTimeout = v
	}

	if v, ok := utils.LookupEnv[uint](EnvWriteTimeout); ok {
		cfg.WriteTimeout = v
	}

	if v, ok := utils.LookupEnv[uint](EnvNumTries); ok {
		cfg.NumTries = v
	}

	if v, ok := utils.LookupEnv[string](EnvBaseDir); ok {
		cfg.BaseDir = v
	}

	if v, ok := utils.LookupEnv[string](EnvMetricsAddr); ok {
		cfg.MetricsAddr = v
	}

	if v, ok := utils.LookupEnv[bool](EnvConsole); ok {
		cfg.Console = v
	}
}
