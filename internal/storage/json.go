package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"tasklist/internal/manager"
	"tasklist/internal/models"
)

// ErrInvalidSnapshot - файл существует, но не является списком задач.
var ErrInvalidSnapshot = errors.New("invalid tasks file")

const taskFileSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "array",
	"items": {
		"type": "object",
		"required": ["Name", "Description", "DueDate", "IsCompleted"],
		"properties": {
			"Name": {"type": ["string", "null"]},
			"Description": {"type": ["string", "null"]},
			"DueDate": {"type": "string", "minLength": 1},
			"IsCompleted": {"type": "boolean"}
		}
	}
}`

var taskFile = jsonschema.MustCompileString("tasks.schema.json", taskFileSchema)

// JSONFileStorage хранит задачи JSON-массивом в одном файле.
// Запись не атомарная: падение посреди записи может оставить обрезанный файл.
type JSONFileStorage struct {
	path string
}

func NewJSONFileStorage(path string) *JSONFileStorage {
	return &JSONFileStorage{path: path}
}

func (s *JSONFileStorage) Path() string {
	return s.path
}

func (s *JSONFileStorage) Save(_ context.Context, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write tasks file: %w", err)
	}
	return nil
}

func (s *JSONFileStorage) Load(_ context.Context) ([]models.Task, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.path, manager.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("read tasks file: %w", err)
	}

	return decodeTasks(data)
}

func (s *JSONFileStorage) Close() error {
	return nil
}

// decodeTasks проверяет документ по схеме и только потом разбирает задачи.
func decodeTasks(data []byte) ([]models.Task, error) {
	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := taskFile.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	tasks := []models.Task{}
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return tasks, nil
}
