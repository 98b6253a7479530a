package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"tasklist/internal/logger"
	"tasklist/internal/manager"
	"tasklist/internal/storage"
)

func main() {
	fromBackend := flag.String("from-backend", storage.BackendJSON, "Source backend (json|sqlite)")
	from := flag.String("from", "tasks.json", "Source file")
	toBackend := flag.String("to-backend", storage.BackendSQLite, "Target backend (json|sqlite)")
	to := flag.String("to", "data/tasks.db", "Target file")
	flag.Parse()

	ctx := context.Background()
	n, err := migrate(ctx, *fromBackend, *from, *toBackend, *to)
	if err != nil {
		logger.Error(ctx, err, "Ошибка миграции")
		os.Exit(1)
	}

	fmt.Printf("Copied %d tasks from %s to %s\n", n, *from, *to)
}

// migrate копирует снимок задач из одного хранилища в другое.
func migrate(ctx context.Context, fromBackend, from, toBackend, to string) (int, error) {
	src, err := storage.Open(fromBackend, from)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	tm := manager.NewTaskManagerWithStorage(src)
	if err := tm.Load(ctx); err != nil {
		return 0, err
	}

	dst, err := storage.Open(toBackend, to)
	if err != nil {
		return 0, err
	}
	defer dst.Close()

	tasks := tm.GetAllTasks()
	if err := dst.Save(ctx, tasks); err != nil {
		return 0, fmt.Errorf("save to %s: %w", to, err)
	}

	logger.Info(ctx, "Snapshot copied", "from", from, "to", to, "count", len(tasks))
	return len(tasks), nil
}
