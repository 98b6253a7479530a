package storage

import (
	"context"
	"fmt"
	"sync"

	"tasklist/internal/manager"
	"tasklist/internal/models"
)

// Storage - снимок последовательности задач (сохранить целиком / прочитать целиком).
type Storage interface {
	manager.Storage
	Close() error
}

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open создает хранилище по имени backend.
func Open(backend, path string) (Storage, error) {
	switch backend {
	case "", BackendJSON:
		return NewJSONFileStorage(path), nil
	case BackendSQLite:
		return NewSQLiteStorage(path)
	case BackendMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// MemoryStorage держит снимок в памяти процесса
type MemoryStorage struct {
	tasks []models.Task
	saved bool
	mu    sync.Mutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Save(_ context.Context, tasks []models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks = append([]models.Task(nil), tasks...)
	m.saved = true
	return nil
}

func (m *MemoryStorage) Load(_ context.Context) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.saved {
		return nil, manager.ErrNotExist
	}
	return append([]models.Task(nil), m.tasks...), nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
