package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout - формат даты, который вводит пользователь (YYYY-MM-DD)
const DateLayout = "2006-01-02"

// Форматы DueDate, которые принимаем при чтении файла.
// Второй вариант пишет исходная версия программы (без часового пояса).
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	DateLayout,
}

// Task - одна задача. Имена JSON-полей фиксированы форматом файла tasks.json.
type Task struct {
	Name        string    `json:"Name"`
	Description string    `json:"Description"`
	DueDate     time.Time `json:"DueDate"`
	IsCompleted bool      `json:"IsCompleted"`
}

// NewTask создает незавершенную задачу.
func NewTask(name, description string, dueDate time.Time) Task {
	return Task{
		Name:        name,
		Description: description,
		DueDate:     dueDate,
		IsCompleted: false,
	}
}

// Status - статус для вывода пользователю
func (t Task) Status() string {
	if t.IsCompleted {
		return "Completed"
	}
	return "Pending"
}

// UnmarshalJSON принимает DueDate в любом формате из dueDateLayouts.
func (t *Task) UnmarshalJSON(data []byte) error {
	type alias Task
	aux := struct {
		*alias
		DueDate string `json:"DueDate"`
	}{alias: (*alias)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	due, err := ParseDueDate(aux.DueDate)
	if err != nil {
		return err
	}
	t.DueDate = due
	return nil
}

// ParseDueDate разбирает дату в любом из поддерживаемых форматов.
// Даты без часового пояса считаются UTC.
func ParseDueDate(s string) (time.Time, error) {
	for _, layout := range dueDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due date %q", s)
}

// CreateTaskRequest - тело запроса POST /tasks
type CreateTaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"` // YYYY-MM-DD
}
