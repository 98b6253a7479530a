// Package config собирает настройки: значения по умолчанию, TOML-файл,
// переменные окружения и флаги (каждый следующий источник главнее).
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// DefaultFile - файл задач, если путь не задан
const DefaultFile = "tasks.json"

// Config - настройки, общие для всех бинарников
type Config struct {
	// File - JSON-файл или база SQLite со снимком задач
	File string `toml:"file"`

	// Backend: json, sqlite или memory
	Backend string `toml:"backend"`

	LogLevel string `toml:"log_level"`
	Pretty   bool   `toml:"pretty"`

	// HTTPAddr включает локальный HTTP API, например "127.0.0.1:8080"
	HTTPAddr string `toml:"http_addr"`

	TelegramToken  string `toml:"telegram_token"`
	TelegramChatID int64  `toml:"telegram_chat_id"`
}

func Default() *Config {
	return &Config{
		File:     DefaultFile,
		Backend:  "json",
		LogLevel: "info",
	}
}

// Load регистрирует флаги в fs и разбирает args.
// Позиционные аргументы остаются доступны через fs.Args().
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := Default()

	var configPath string
	fromFlags := *cfg
	fs.StringVar(&configPath, "config", "", "Path to TOML config file (env TASKS_CONFIG)")
	fs.StringVar(&fromFlags.File, "file", cfg.File, "Tasks file (env TASKS_FILE)")
	fs.StringVar(&fromFlags.Backend, "backend", cfg.Backend, "Storage backend: json|sqlite|memory (env TASKS_BACKEND)")
	fs.StringVar(&fromFlags.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error (env TASKS_LOG_LEVEL)")
	fs.BoolVar(&fromFlags.Pretty, "pretty", cfg.Pretty, "Human-readable logs instead of JSON")
	fs.StringVar(&fromFlags.HTTPAddr, "http", cfg.HTTPAddr, "Serve the HTTP API on this address (env TASKS_HTTP_ADDR)")
	fs.StringVar(&fromFlags.TelegramToken, "telegram-token", cfg.TelegramToken, "Telegram bot token (env TASKS_TELEGRAM_TOKEN)")
	fs.Int64Var(&fromFlags.TelegramChatID, "telegram-chat", cfg.TelegramChatID, "Only chat allowed to use the bot (env TASKS_TELEGRAM_CHAT_ID)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath == "" {
		configPath = os.Getenv("TASKS_CONFIG")
	}
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := loadConfigFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	// явно заданные флаги перекрывают файл и окружение
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "file":
			cfg.File = fromFlags.File
		case "backend":
			cfg.Backend = fromFlags.Backend
		case "log-level":
			cfg.LogLevel = fromFlags.LogLevel
		case "pretty":
			cfg.Pretty = fromFlags.Pretty
		case "http":
			cfg.HTTPAddr = fromFlags.HTTPAddr
		case "telegram-token":
			cfg.TelegramToken = fromFlags.TelegramToken
		case "telegram-chat":
			cfg.TelegramChatID = fromFlags.TelegramChatID
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, которые нельзя молча исправить.
func (c *Config) Validate() error {
	if c.File == "" && c.Backend != "memory" {
		return errors.New("tasks file path is empty")
	}
	switch c.Backend {
	case "json", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// findConfigFile ищет файл настроек в текущей директории
func findConfigFile() string {
	for _, name := range []string{"tasks.toml", ".tasks.toml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// Переменные окружения перекрывают файл настроек
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TASKS_FILE"); v != "" {
		cfg.File = v
	}
	if v := os.Getenv("TASKS_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("TASKS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKS_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("TASKS_TELEGRAM_TOKEN"); v != "" {
		cfg.TelegramToken = v
	}
	if v := os.Getenv("TASKS_TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TASKS_TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	return nil
}
