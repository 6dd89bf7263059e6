package shared

import (
	"crypto/rand"
	_ "embed"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// placeholderSecret ships in the example config and is never accepted as a
// real signing key.
const placeholderSecret = "your-secret-key-here-change-this"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Security SecurityConfig `toml:"security"`
	Paths    PathsConfig    `toml:"paths"`
	Upload   UploadConfig   `toml:"upload"`
	YouTube  YouTubeConfig  `toml:"youtube"`
	Spotify  SpotifyConfig  `toml:"spotify"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// SecurityConfig contains token signing and session settings.
type SecurityConfig struct {
	JWTSecret           string `toml:"jwt_secret"`
	SessionTimeoutHours int    `toml:"session_timeout_hours"`
}

// PathsConfig contains the library layout and the tagging tool location.
//
// MusicDir is the shared library root and TempDir the global scratch space.
// FerricEnabled is the static default; a `ferric_enabled` row in the settings
// store overrides it at runtime.
type PathsConfig struct {
	MusicDir      string `toml:"music_dir"`
	TempDir       string `toml:"temp_dir"`
	FerricPath    string `toml:"ferric_path"`
	FerricEnabled bool   `toml:"ferric_enabled"`
}

// UploadConfig contains direct-upload limits.
type UploadConfig struct {
	MaxFileSizeMB     int64    `toml:"max_file_size_mb"`
	AllowedExtensions []string `toml:"allowed_extensions"`
}

// YouTubeConfig contains yt-dlp invocation settings.
//
// FormatSelector and PlayerClient are only appended to the argument vector
// when non-empty; ExtraArgs are operator-supplied passthrough flags appended
// last, immediately before the URL.
type YouTubeConfig struct {
	Enabled        bool     `toml:"enabled"`
	YtdlpPath      string   `toml:"ytdlp_path"`
	AudioFormat    string   `toml:"audio_format"`
	FormatSelector string   `toml:"format_selector"`
	PlayerClient   string   `toml:"player_client"`
	ExtraArgs      []string `toml:"extra_args"`
	TimeoutMinutes int      `toml:"timeout_minutes"`
}

// SpotifyConfig contains spotdl invocation settings.
type SpotifyConfig struct {
	Enabled        bool   `toml:"enabled"`
	SpotdlPath     string `toml:"spotdl_path"`
	AudioFormat    string `toml:"audio_format"`
	TimeoutMinutes int    `toml:"timeout_minutes"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Environment overrides and JWT secret generation are applied after parsing.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnvOverrides()
	config.ensureSecret()

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnvOverrides()
	config.ensureSecret()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MaxFileSizeBytes converts the configured upload limit to bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return c.Upload.MaxFileSizeMB * 1024 * 1024
}

// Addr returns the host:port pair the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// applyEnvOverrides lets the deployment environment override file-level settings.
func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			c.Server.Port = n
		}
	}
	if path := os.Getenv("DATABASE_PATH"); path != "" {
		c.Database.Path = path
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.Security.JWTSecret = secret
	}
	if dir := os.Getenv("MUSIC_DIR"); dir != "" {
		c.Paths.MusicDir = dir
	}
	if dir := os.Getenv("TEMP_DIR"); dir != "" {
		c.Paths.TempDir = dir
	}
}

// ensureSecret replaces an empty or placeholder JWT secret with a random one.
// Tokens signed with a generated secret do not survive a restart.
func (c *Config) ensureSecret() {
	if c.Security.JWTSecret == "" || c.Security.JWTSecret == placeholderSecret {
		c.Security.JWTSecret = generateSecret()
	}
}

// generateSecret returns a base64-encoded 32 byte random key.
func generateSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("failed to generate jwt secret: %v", err))
	}
	return base64.RawStdEncoding.EncodeToString(buf)
}
