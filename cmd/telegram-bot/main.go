package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"tasklist/internal/bot"
	"tasklist/internal/config"
	"tasklist/internal/logger"
	"tasklist/internal/manager"
	"tasklist/internal/storage"
)

func main() {
	os.Exit(run())
}

// run возвращает код выхода; os.Exit только в main, чтобы отработали defer.
func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		logger.Error(ctx, err, "Ошибка конфигурации")
		return 2
	}
	logger.SetPretty(cfg.Pretty)
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	logger.Info(ctx, "Запуск Telegram-бота...")

	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		logger.Error(ctx, errors.New("telegram token and chat id are required"), "Бот не настроен")
		return 2
	}

	st, err := storage.Open(cfg.Backend, cfg.File)
	if err != nil {
		logger.Error(ctx, err, "Ошибка инициализации хранилища")
		return 1
	}
	defer st.Close()

	tm := manager.NewTaskManagerWithStorage(st)
	loadFailed := false
	if err := tm.Load(ctx); err != nil {
		// бот работает с пустым списком, но при выходе не затирает нечитаемый файл
		loadFailed = true
		logger.Error(ctx, err, "Ошибка загрузки задач")
	}

	b, err := bot.New(cfg.TelegramToken, bot.NewHandler(tm, cfg.TelegramChatID))
	if err != nil {
		logger.Error(ctx, err, "Ошибка создания бота")
		return 1
	}

	if err := b.Start(ctx); err != nil {
		logger.Error(ctx, err, "Бот остановлен с ошибкой")
	}

	if loadFailed {
		logger.Warn(ctx, "Задачи не сохранены: файл задач не был загружен при старте")
		return 1
	}

	// сохраняем при выходе, как и консольное меню; ошибку уже записал tm.Save
	if err := tm.Save(context.Background()); err != nil {
		return 1
	}
	return 0
}
