package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TASKS_CONFIG", "TASKS_FILE", "TASKS_BACKEND", "TASKS_LOG_LEVEL",
		"TASKS_HTTP_ADDR", "TASKS_TELEGRAM_TOKEN", "TASKS_TELEGRAM_CHAT_ID",
	} {
		t.Setenv(key, "")
	}
	// findConfigFile смотрит в текущую директорию
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("test", flag.ContinueOnError)
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.File != DefaultFile || cfg.Backend != "json" || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestPrecedence(t *testing.T) {
	clearEnv(t)

	configFile := filepath.Join(t.TempDir(), "tasks.toml")
	content := `
file = "from-file.json"
backend = "sqlite"
log_level = "debug"
http_addr = "127.0.0.1:9000"
telegram_chat_id = 42
`
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TASKS_FILE", "from-env.json")
	t.Setenv("TASKS_LOG_LEVEL", "warn")

	fs := newFlagSet()
	cfg, err := Load(fs, []string{"-config", configFile, "-log-level", "error", "export", "-format", "csv"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Backend != "sqlite" {
		t.Errorf("Backend = %q, want value from file", cfg.Backend)
	}
	if cfg.HTTPAddr != "127.0.0.1:9000" || cfg.TelegramChatID != 42 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.File != "from-env.json" {
		t.Errorf("File = %q, want value from env", cfg.File)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want value from flag", cfg.LogLevel)
	}
	if args := fs.Args(); len(args) != 3 || args[0] != "export" {
		t.Errorf("positional args = %v", args)
	}
}

func TestConfigFileInWorkingDir(t *testing.T) {
	clearEnv(t)

	if err := os.WriteFile("tasks.toml", []byte(`file = "cwd.json"`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.File != "cwd.json" {
		t.Errorf("File = %q", cfg.File)
	}
}

func TestInvalid(t *testing.T) {
	clearEnv(t)

	if _, err := Load(newFlagSet(), []string{"-backend", "postgres"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := Load(newFlagSet(), []string{"-file", ""}); err == nil {
		t.Error("expected error for empty file")
	}

	t.Setenv("TASKS_TELEGRAM_CHAT_ID", "not-a-number")
	if _, err := Load(newFlagSet(), nil); err == nil {
		t.Error("expected error for bad chat id")
	}

	t.Setenv("TASKS_TELEGRAM_CHAT_ID", "")
	bad := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(bad, []byte("file = "), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(newFlagSet(), []string{"-config", bad}); err == nil {
		t.Error("expected error for malformed TOML")
	}
}
