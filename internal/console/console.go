// Package console - текстовое меню с номерами пунктов поверх TaskManager.
// Весь разбор ввода здесь; менеджер получает уже разобранные значения.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tasklist/internal/logger"
	"tasklist/internal/manager"
	"tasklist/internal/models"
)

const separator = "------------------------"

const menu = `Task Management Application
1. Add Task
2. View Tasks
3. Mark Completed
4. Delete Task
5. Save Tasks
6. Sort Tasks by Due Date
7. Filter Tasks by Completion Status
8. Exit
Enter your choice: `

type Console struct {
	tm  *manager.TaskManager
	in  *bufio.Scanner
	out io.Writer

	// loadFailed - снимок при старте прочитать не удалось;
	// тогда конец ввода не перезаписывает файл
	loadFailed bool
}

func New(tm *manager.TaskManager, in io.Reader, out io.Writer) *Console {
	return &Console{tm: tm, in: bufio.NewScanner(in), out: out}
}

// Run показывает меню, пока пользователь не выберет Exit, не закончится ввод
// или не отменят ctx. Exit и конец ввода сохраняют задачи перед выходом,
// кроме конца ввода после неудачной загрузки.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(c.out, menu)
		choice, ok := c.readLine()
		if !ok {
			fmt.Fprintln(c.out)
			c.saveOnEOF(ctx)
			return c.in.Err()
		}

		switch choice {
		case "1":
			c.add()
		case "2":
			c.view()
		case "3":
			c.markCompleted()
		case "4":
			c.delete()
		case "5":
			c.save(ctx)
		case "6":
			c.tm.SortByDueDate()
			fmt.Fprintln(c.out, "Tasks sorted by due date.")
		case "7":
			c.filter()
		case "8":
			c.save(ctx)
			return nil
		default:
			fmt.Fprintln(c.out, "Invalid choice. Please try again.")
		}

		fmt.Fprintln(c.out, separator)
	}
}

func (c *Console) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) prompt(text string) (string, bool) {
	fmt.Fprint(c.out, text)
	return c.readLine()
}

// Ввод оборвался посреди операции: хранилище не трогаем.
func (c *Console) add() {
	name, ok := c.prompt("Enter task name: ")
	if !ok {
		return
	}
	description, ok := c.prompt("Enter task description: ")
	if !ok {
		return
	}
	raw, ok := c.prompt("Enter task due date (YYYY-MM-DD): ")
	if !ok {
		return
	}

	dueDate, err := models.ParseDueDate(raw)
	if err != nil {
		fmt.Fprintln(c.out, "Invalid due date format.")
		return
	}

	c.tm.AddTask(name, description, dueDate)
	fmt.Fprintln(c.out, "Task added successfully.")
}

func (c *Console) view() {
	tasks := c.tm.GetAllTasks()
	if len(tasks) == 0 {
		fmt.Fprintln(c.out, "No tasks found.")
		return
	}

	for i, task := range tasks {
		fmt.Fprintf(c.out, "Task ID: %d\n", i+1)
		fmt.Fprintf(c.out, "Task Name: %s\n", task.Name)
		fmt.Fprintf(c.out, "Description: %s\n", task.Description)
		fmt.Fprintf(c.out, "Due Date: %s\n", task.DueDate.Format(models.DateLayout))
		fmt.Fprintf(c.out, "Status: %s\n", task.Status())
		fmt.Fprintln(c.out, separator)
	}
}

func (c *Console) readOrdinal(text string) (int, bool) {
	raw, ok := c.prompt(text)
	if !ok {
		return 0, false
	}
	ordinal, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Fprintln(c.out, "Invalid task ID format.")
		return 0, false
	}
	return ordinal, true
}

func (c *Console) markCompleted() {
	ordinal, ok := c.readOrdinal("Enter task ID to mark as completed: ")
	if !ok {
		return
	}
	if err := c.tm.MarkCompleted(ordinal); err != nil {
		c.report(err)
		return
	}
	fmt.Fprintln(c.out, "Task marked as completed.")
}

func (c *Console) delete() {
	ordinal, ok := c.readOrdinal("Enter task ID to delete: ")
	if !ok {
		return
	}
	if err := c.tm.DeleteTask(ordinal); err != nil {
		c.report(err)
		return
	}
	fmt.Fprintln(c.out, "Task deleted successfully.")
}

func (c *Console) filter() {
	raw, ok := c.prompt("Show completed tasks? (y/n): ")
	if !ok {
		return
	}
	showCompleted := strings.ToLower(raw) == "y"
	c.tm.FilterByCompletion(showCompleted)
	fmt.Fprintf(c.out, "Tasks filtered by completion status (Show Completed: %t).\n", showCompleted)
}

func (c *Console) save(ctx context.Context) {
	if err := c.tm.Save(ctx); err != nil {
		fmt.Fprintf(c.out, "Error while saving tasks: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Tasks saved successfully.")
}

func (c *Console) saveOnEOF(ctx context.Context) {
	if c.loadFailed {
		fmt.Fprintln(c.out, "Tasks were not saved: the tasks file could not be loaded at startup.")
		logger.Warn(ctx, "Skipping save at end of input after failed load")
		return
	}
	c.save(ctx)
}

// Load читает сохраненные задачи при старте и печатает результат.
func (c *Console) Load(ctx context.Context) {
	found, err := c.tm.Restore(ctx)
	if err != nil {
		c.loadFailed = true
		fmt.Fprintf(c.out, "Error while loading tasks: %v\n", err)
		return
	}
	c.loadFailed = false
	if found {
		fmt.Fprintln(c.out, "Tasks loaded successfully.")
	}
}

func (c *Console) report(err error) {
	if errors.Is(err, manager.ErrInvalidOrdinal) {
		fmt.Fprintln(c.out, "Invalid task ID.")
		return
	}
	logger.Error(context.Background(), err, "Operation failed")
	fmt.Fprintf(c.out, "Error: %v\n", err)
}
