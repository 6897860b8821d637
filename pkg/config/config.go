package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DefaultStorageKey = "semester4_sys_v3"
	BackupFileName    = "semester4_backup.json"
)

type Config struct {
	Env      string
	DataDir  string
	Timezone *time.Location

	Storage    StorageConfig
	Log        LogConfig
	Backup     BackupConfig
	Google     GoogleConfig
	Telegram   TelegramConfig
	Discord    DiscordConfig
	Review     ReviewConfig
	Automation AutomationConfig
}

type StorageConfig struct {
	DBPath string
	Key    string
	// MergeDepth is how many object levels of a stored blob are merged over
	// the defaults. 1 replaces whole top-level sections.
	MergeDepth int
}

type LogConfig struct {
	Level  string
	Format string
}

type BackupConfig struct {
	Dir     string
	GitPush bool
	SSHKey  string
}

type GoogleConfig struct {
	CredentialsFile string
	CalendarID      string
	CalendarDetails string
	DriveFolderID   string
}

type TelegramConfig struct {
	Token  string
	ChatID int64
}

type DiscordConfig struct {
	Token     string
	ChannelID string
}

type ReviewConfig struct {
	Dir          string
	GeminiAPIKey string
	GeminiModel  string
	Timeout      time.Duration
}

// AutomationConfig drives the jobs run by the serve command. An empty
// expression disables the job.
type AutomationConfig struct {
	BackupCron   string
	ReminderCron string
	PollInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	cfg.Env = v.GetString("ENV")
	cfg.DataDir = expandHome(v.GetString("DATA_DIR"))

	loc, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		loc = time.Local
	}
	cfg.Timezone = loc

	dbPath := v.GetString("DB_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(cfg.DataDir, "sempilot.db")
	}
	depth := v.GetInt("MERGE_DEPTH")
	if depth < 1 {
		depth = 1
	}
	cfg.Storage = StorageConfig{
		DBPath:     expandHome(dbPath),
		Key:        v.GetString("STORAGE_KEY"),
		MergeDepth: depth,
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	backupDir := v.GetString("BACKUP_DIR")
	if backupDir == "" {
		backupDir = filepath.Join(cfg.DataDir, "backups")
	}
	cfg.Backup = BackupConfig{
		Dir:     expandHome(backupDir),
		GitPush: v.GetBool("GIT_PUSH"),
		SSHKey:  expandHome(v.GetString("GIT_SSH_KEY")),
	}

	cfg.Google = GoogleConfig{
		CredentialsFile: expandHome(v.GetString("GOOGLE_CREDENTIALS_FILE")),
		CalendarID:      v.GetString("CALENDAR_ID"),
		CalendarDetails: v.GetString("CALENDAR_DETAILS"),
		DriveFolderID:   v.GetString("DRIVE_FOLDER_ID"),
	}

	cfg.Telegram = TelegramConfig{
		Token:  v.GetString("TELEGRAM_TOKEN"),
		ChatID: v.GetInt64("TELEGRAM_CHAT_ID"),
	}

	cfg.Discord = DiscordConfig{
		Token:     v.GetString("DISCORD_TOKEN"),
		ChannelID: v.GetString("DISCORD_CHANNEL_ID"),
	}

	reviewDir := v.GetString("REVIEW_DIR")
	if reviewDir == "" {
		reviewDir = filepath.Join(cfg.DataDir, "reviews")
	}
	cfg.Review = ReviewConfig{
		Dir:          expandHome(reviewDir),
		GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
		GeminiModel:  v.GetString("GEMINI_MODEL"),
		Timeout:      parseDuration(v.GetString("REVIEW_TIMEOUT"), 30*time.Second),
	}

	cfg.Automation = AutomationConfig{
		BackupCron:   v.GetString("BACKUP_CRON"),
		ReminderCron: v.GetString("REMINDER_CRON"),
		PollInterval: parseDuration(v.GetString("AUTOMATION_POLL_INTERVAL"), 30*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("DATA_DIR", "~/.sempilot")
	v.SetDefault("TIMEZONE", "Asia/Jakarta")

	v.SetDefault("DB_PATH", "")
	v.SetDefault("STORAGE_KEY", DefaultStorageKey)
	v.SetDefault("MERGE_DEPTH", 1)

	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("BACKUP_DIR", "")
	v.SetDefault("GIT_PUSH", false)
	v.SetDefault("GIT_SSH_KEY", "")

	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "")
	v.SetDefault("CALENDAR_ID", "primary")
	v.SetDefault("CALENDAR_DETAILS", "Jadwal Eksekusi Semester 4 High-Performance")
	v.SetDefault("DRIVE_FOLDER_ID", "")

	v.SetDefault("TELEGRAM_TOKEN", "")
	v.SetDefault("TELEGRAM_CHAT_ID", 0)
	v.SetDefault("DISCORD_TOKEN", "")
	v.SetDefault("DISCORD_CHANNEL_ID", "")

	v.SetDefault("REVIEW_DIR", "")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("REVIEW_TIMEOUT", "30s")

	v.SetDefault("BACKUP_CRON", "0 21 * * *")
	v.SetDefault("REMINDER_CRON", "30 20 * * 6")
	v.SetDefault("AUTOMATION_POLL_INTERVAL", "30s")
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
