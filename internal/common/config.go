package common

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. It is loaded once at
// startup and injected into constructors; nothing reads the environment
// mid-pipeline.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Mailbox  MailboxConfig
	Board    BoardConfig
	Extract  ExtractConfig
}

// DatabaseConfig holds the SQLite store configuration.
type DatabaseConfig struct {
	Path string
}

// ServerConfig holds the HTTP API configuration.
type ServerConfig struct {
	Addr      string
	JWTSecret string
}

// MailboxConfig holds the IMAP source configuration.
type MailboxConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	SubjectMarker string
	FetchLimit    int
	UnseenOnly    bool
	TmpDir        string
}

// BoardConfig holds the remote board (Monday.com) configuration.
type BoardConfig struct {
	APIURL   string
	APIToken string
	BoardID  string
}

// ExtractConfig holds the field-extractor configuration.
type ExtractConfig struct {
	RulesPath string // optional JSON rules override
}

// LoadConfig loads configuration from the environment. A .env file in
// the working directory is honored when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./workorders.sqlite"),
		},
		Server: ServerConfig{
			Addr:      ":" + getEnv("PORT", "8080"),
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Mailbox: MailboxConfig{
			Host:          getEnv("IMAP_SERVER", ""),
			Port:          getEnvAsInt("IMAP_PORT", 993),
			Username:      getEnv("EMAIL", ""),
			Password:      getEnv("PASSWORD", ""),
			SubjectMarker: getEnv("SUBJECT_MARKER", "Work Order"),
			FetchLimit:    getEnvAsInt("FETCH_LIMIT", 3),
			UnseenOnly:    getEnvAsBool("IMAP_UNSEEN_ONLY", false),
			TmpDir:        getEnv("TMP_DIR", os.TempDir()),
		},
		Board: BoardConfig{
			APIURL:   getEnv("MONDAY_URL", "https://api.monday.com/v2"),
			APIToken: getEnv("MONDAY_API_TOKEN", ""),
			BoardID:  getEnv("BOARD_ID", ""),
		},
		Extract: ExtractConfig{
			RulesPath: getEnv("EXTRACT_RULES_PATH", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// ValidateServer checks the configuration the API daemon needs.
func (c *Config) ValidateServer() error {
	if c.Server.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Board.APIToken == "" {
		return errors.New("MONDAY_API_TOKEN is required")
	}
	if c.Board.BoardID == "" {
		return errors.New("BOARD_ID is required")
	}
	return nil
}

// ValidateMailbox checks the configuration the batch runner needs.
func (c *Config) ValidateMailbox() error {
	if c.Mailbox.Host == "" {
		return errors.New("IMAP_SERVER is required")
	}
	if c.Mailbox.Username == "" || c.Mailbox.Password == "" {
		return errors.New("EMAIL and PASSWORD are required")
	}
	if c.Board.APIToken == "" {
		return errors.New("MONDAY_API_TOKEN is required")
	}
	if c.Board.BoardID == "" {
		return errors.New("BOARD_ID is required")
	}
	return nil
}
