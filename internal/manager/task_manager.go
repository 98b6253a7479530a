package manager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tasklist/internal/logger"
	"tasklist/internal/models"
)

// ErrInvalidOrdinal возвращается, когда номер задачи вне диапазона [1, len].
var ErrInvalidOrdinal = errors.New("invalid task ID")

var (
	operationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasklist_operations_total",
			Help: "Total number of task store operations",
		},
		[]string{"op", "status"},
	)

	taskCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tasklist_tasks",
			Help: "Number of tasks currently held in memory",
		},
	)

	persistDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tasklist_persist_duration_seconds",
			Help:    "Duration of Save and Load operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

// Storage - снимок всей последовательности задач.
// Реализации лежат в internal/storage.
type Storage interface {
	Save(ctx context.Context, tasks []models.Task) error
	Load(ctx context.Context) ([]models.Task, error)
}

// ErrNotExist сообщает менеджеру, что сохраненного снимка еще нет.
// Storage должен оборачивать его (errors.Is) при отсутствии файла/таблицы.
var ErrNotExist = errors.New("snapshot does not exist")

// TaskManager владеет упорядоченной последовательностью задач.
// Номера задач (ordinal) начинаются с 1 и действительны только
// относительно текущей длины: удаление и сортировка перенумеровывают задачи.
type TaskManager struct {
	tasks   []models.Task
	storage Storage
	mu      sync.Mutex
}

func NewTaskManager() *TaskManager {
	return &TaskManager{}
}

// NewTaskManagerWithStorage создает пустой менеджер, сохраняющийся в storage.
func NewTaskManagerWithStorage(storage Storage) *TaskManager {
	return &TaskManager{storage: storage}
}

// AddTask добавляет незавершенную задачу в конец и возвращает ее номер.
func (tm *TaskManager) AddTask(name, description string, dueDate time.Time) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.tasks = append(tm.tasks, models.NewTask(name, description, dueDate))
	tm.observe("add", nil)
	logger.Debug(context.Background(), "Task added", "name", name, "ordinal", len(tm.tasks))
	return len(tm.tasks)
}

// GetAllTasks возвращает копию текущей последовательности.
func (tm *TaskManager) GetAllTasks() []models.Task {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	out := make([]models.Task, len(tm.tasks))
	copy(out, tm.tasks)
	return out
}

func (tm *TaskManager) Len() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.tasks)
}

// MarkCompleted отмечает задачу с номером ordinal выполненной.
// Повторный вызов ничего не меняет.
func (tm *TaskManager) MarkCompleted(ordinal int) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	i, err := tm.index(ordinal)
	if err != nil {
		tm.observe("complete", err)
		return err
	}

	tm.tasks[i].IsCompleted = true
	tm.observe("complete", nil)
	logger.Debug(context.Background(), "Task completed", "ordinal", ordinal)
	return nil
}

// DeleteTask удаляет задачу; следующие задачи сдвигаются на одну позицию.
func (tm *TaskManager) DeleteTask(ordinal int) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	i, err := tm.index(ordinal)
	if err != nil {
		tm.observe("delete", err)
		return err
	}

	tm.tasks = append(tm.tasks[:i], tm.tasks[i+1:]...)
	tm.observe("delete", nil)
	logger.Debug(context.Background(), "Task deleted", "ordinal", ordinal)
	return nil
}

// SortByDueDate переупорядочивает задачи по сроку на месте.
// Задачи с одинаковым сроком сохраняют взаимный порядок.
func (tm *TaskManager) SortByDueDate() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	sort.SliceStable(tm.tasks, func(i, j int) bool {
		return tm.tasks[i].DueDate.Before(tm.tasks[j].DueDate)
	})
	tm.observe("sort", nil)
}

// FilterByCompletion оставляет в памяти только задачи с IsCompleted == showCompleted.
// Операция разрушающая: остальные задачи удаляются, и следующий Save
// сохранит только отфильтрованное подмножество. Для просмотра без потерь - Filter.
func (tm *TaskManager) FilterByCompletion(showCompleted bool) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	kept := tm.tasks[:0]
	for _, task := range tm.tasks {
		if task.IsCompleted == showCompleted {
			kept = append(kept, task)
		}
	}
	// обнуляем хвост, чтобы не держать строки удаленных задач
	for i := len(kept); i < len(tm.tasks); i++ {
		tm.tasks[i] = models.Task{}
	}
	tm.tasks = kept
	tm.observe("filter", nil)
}

// Filter возвращает подмножество задач, не изменяя последовательность.
// completed == nil означает все задачи.
func (tm *TaskManager) Filter(completed *bool) []models.Task {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	out := make([]models.Task, 0, len(tm.tasks))
	for _, task := range tm.tasks {
		if completed == nil || task.IsCompleted == *completed {
			out = append(out, task)
		}
	}
	return out
}

// Save записывает всю текущую последовательность, перезаписывая снимок.
func (tm *TaskManager) Save(ctx context.Context) error {
	if tm.storage == nil {
		return errors.New("no storage configured")
	}

	tasks := tm.GetAllTasks()
	start := time.Now()
	err := tm.storage.Save(ctx, tasks)
	persistDuration.WithLabelValues("save").Observe(time.Since(start).Seconds())

	tm.mu.Lock()
	tm.observe("save", err)
	tm.mu.Unlock()

	if err != nil {
		logger.Error(ctx, err, "Error while saving tasks")
		return fmt.Errorf("save tasks: %w", err)
	}
	logger.Info(ctx, "Tasks saved", "count", len(tasks))
	return nil
}

// Load заменяет последовательность содержимым снимка.
// Если снимка нет - последовательность становится пустой и ошибки нет.
// При поврежденном снимке последовательность не меняется.
func (tm *TaskManager) Load(ctx context.Context) error {
	_, err := tm.Restore(ctx)
	return err
}

// Restore - то же, что Load, но сообщает, был ли найден снимок
// (found == false: снимка нет, последовательность очищена).
func (tm *TaskManager) Restore(ctx context.Context) (found bool, err error) {
	if tm.storage == nil {
		return false, errors.New("no storage configured")
	}

	start := time.Now()
	tasks, err := tm.storage.Load(ctx)
	persistDuration.WithLabelValues("load").Observe(time.Since(start).Seconds())

	tm.mu.Lock()
	defer tm.mu.Unlock()

	if errors.Is(err, ErrNotExist) {
		tm.tasks = nil
		tm.observe("load", nil)
		logger.Info(ctx, "No saved tasks found, starting empty")
		return false, nil
	}
	if err != nil {
		tm.observe("load", err)
		logger.Error(ctx, err, "Error while loading tasks")
		return false, fmt.Errorf("load tasks: %w", err)
	}

	tm.tasks = tasks
	tm.observe("load", nil)
	logger.Info(ctx, "Tasks loaded", "count", len(tasks))
	return true, nil
}

// index переводит номер задачи в индекс слайса. Вызывать под tm.mu.
func (tm *TaskManager) index(ordinal int) (int, error) {
	if ordinal < 1 || ordinal > len(tm.tasks) {
		return 0, fmt.Errorf("%w: %d (have %d tasks)", ErrInvalidOrdinal, ordinal, len(tm.tasks))
	}
	return ordinal - 1, nil
}

// observe обновляет метрики. Вызывать под tm.mu.
func (tm *TaskManager) observe(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	operationCount.WithLabelValues(op, status).Inc()
	taskCount.Set(float64(len(tm.tasks)))
}
