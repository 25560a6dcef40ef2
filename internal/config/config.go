package config // package config loads application configuration from defaults, a YAML file and the environment

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the YAML file consulted when no --config path is given.
const DefaultFile = "overlay.yaml"

// Config holds the runtime settings of the overlay server.  Values are
// resolved in layers: built-in defaults, then the optional YAML file, then
// environment variables.  Command line flags are applied on top by main.
type Config struct {
	Env             string        `yaml:"env"`             // application environment (e.g. "dev", "prod")
	Host            string        `yaml:"host"`            // interface to bind, 0.0.0.0 for all
	Port            int           `yaml:"port"`            // HTTP port to listen on
	Debug           bool          `yaml:"debug"`           // debug / reload mode
	TemplateDir     string        `yaml:"templateDir"`     // on-disk template dir watched in debug mode; empty uses embedded templates
	AllowOrigins    []string      `yaml:"allowOrigins"`    // CORS origins, "*" for any
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"` // grace period for in-flight requests
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Env:             "dev",
		Host:            "0.0.0.0",
		Port:            5001,
		AllowOrigins:    []string{"*"},
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load builds a Config from defaults, the YAML file at path and the
// environment.  A missing file is not an error; a malformed one is.  A .env
// file in the working directory is loaded first when present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Env = envStr("APP_ENV", c.Env)
	c.Host = envStr("APP_HOST", c.Host)
	c.Port = envInt("APP_PORT", c.Port)
	c.Debug = envBool("APP_DEBUG", c.Debug)
	c.TemplateDir = envStr("TEMPLATE_DIR", c.TemplateDir)
	c.ShutdownTimeout = envDur("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
		c.AllowOrigins = splitList(v)
	}
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("host must not be empty")
	}
	// port 0 asks the kernel for a free port
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if len(c.AllowOrigins) == 0 {
		return errors.New("at least one CORS origin is required")
	}
	return nil
}

// Addr is the listen address in host:port form.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
