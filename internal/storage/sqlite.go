package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"tasklist/internal/manager"
	"tasklist/internal/models"
)

// SQLiteStorage хранит тот же снимок в таблице: Save переписывает все строки.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStorage{db: db}, nil
}

func createTables(db *sql.DB) error {
	createTasksTable := `
	CREATE TABLE IF NOT EXISTS tasks (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		due_date TEXT NOT NULL,
		is_completed BOOLEAN NOT NULL DEFAULT FALSE
	)`

	// одна строка - отметка о том, что снимок хотя бы раз сохранялся
	createSnapshotTable := `
	CREATE TABLE IF NOT EXISTS snapshot (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		saved_at DATETIME NOT NULL
	)`

	if _, err := db.Exec(createTasksTable); err != nil {
		return fmt.Errorf("create table tasks: %w", err)
	}
	if _, err := db.Exec(createSnapshotTable); err != nil {
		return fmt.Errorf("create table snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) Save(ctx context.Context, tasks []models.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO tasks (position, name, description, due_date, is_completed)
	VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, task := range tasks {
		_, err := stmt.ExecContext(ctx,
			i+1, task.Name, task.Description,
			task.DueDate.Format(time.RFC3339Nano), task.IsCompleted,
		)
		if err != nil {
			return fmt.Errorf("insert task %d: %w", i+1, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO snapshot (id, saved_at) VALUES (1, ?)", time.Now().UTC())
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) Load(ctx context.Context) ([]models.Task, error) {
	var snapshots int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM snapshot").Scan(&snapshots); err != nil {
		return nil, err
	}
	if snapshots == 0 {
		return nil, manager.ErrNotExist
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT name, description, due_date, is_completed
	FROM tasks ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// Вспомогательная функция для сканирования задач
func scanTasks(rows *sql.Rows) ([]models.Task, error) {
	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		var dueDate string

		if err := rows.Scan(&task.Name, &task.Description, &dueDate, &task.IsCompleted); err != nil {
			return nil, err
		}

		d, err := models.ParseDueDate(dueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		task.DueDate = d

		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}
