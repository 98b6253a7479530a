package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"tasklist/internal/logger"
	"tasklist/internal/manager"
	"tasklist/internal/models"
)

const helpText = `Commands:
/add name | description | YYYY-MM-DD - add a task
/list - show all tasks
/done N - mark task N as completed
/delete N - delete task N
/sort - sort tasks by due date
/filter y|n - keep only completed (y) or pending (n) tasks
/save - save tasks
/help - this help`

// Handler переводит команды чата в операции менеджера задач.
// Отвечает только одному чату: список задач однопользовательский.
type Handler struct {
	tm     *manager.TaskManager
	chatID int64
}

func NewHandler(tm *manager.TaskManager, chatID int64) *Handler {
	return &Handler{tm: tm, chatID: chatID}
}

// Allowed - обслуживается ли чат chatID
func (h *Handler) Allowed(chatID int64) bool {
	return chatID == h.chatID
}

// Handle выполняет команду и возвращает текст ответа.
func (h *Handler) Handle(ctx context.Context, command, args string) string {
	args = strings.TrimSpace(args)

	switch command {
	case "start", "help":
		return helpText
	case "add":
		return h.add(args)
	case "list":
		return h.list()
	case "done":
		return h.withOrdinal(args, "done", func(n int) error { return h.tm.MarkCompleted(n) }, "Task %d marked as completed.")
	case "delete":
		return h.withOrdinal(args, "delete", func(n int) error { return h.tm.DeleteTask(n) }, "Task %d deleted.")
	case "sort":
		h.tm.SortByDueDate()
		return "Tasks sorted by due date."
	case "filter":
		// без ответа y/n не фильтруем: операция удаляет задачи
		if args == "" {
			return "Specify which tasks to keep: /filter y (completed) or /filter n (pending)"
		}
		show := strings.EqualFold(args, "y")
		h.tm.FilterByCompletion(show)
		return fmt.Sprintf("Tasks filtered by completion status (Show Completed: %t).", show)
	case "save":
		if err := h.tm.Save(ctx); err != nil {
			return "Error while saving tasks: " + err.Error()
		}
		return "Tasks saved successfully."
	default:
		return "Unknown command. Use /help for the list of commands."
	}
}

func (h *Handler) add(args string) string {
	parts := strings.Split(args, "|")
	if len(parts) != 3 {
		return "Usage: /add name | description | YYYY-MM-DD"
	}

	dueDate, err := models.ParseDueDate(strings.TrimSpace(parts[2]))
	if err != nil {
		return "Invalid due date format."
	}

	id := h.tm.AddTask(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), dueDate)
	return fmt.Sprintf("Task added successfully (#%d).", id)
}

func (h *Handler) list() string {
	tasks := h.tm.GetAllTasks()
	if len(tasks) == 0 {
		return "No tasks found."
	}

	var b strings.Builder
	for i, task := range tasks {
		mark := "[ ]"
		if task.IsCompleted {
			mark = "[x]"
		}
		fmt.Fprintf(&b, "%d. %s %s (due %s)", i+1, mark, task.Name, task.DueDate.Format(models.DateLayout))
		if task.Description != "" {
			fmt.Fprintf(&b, "\n   %s", task.Description)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *Handler) withOrdinal(args, command string, op func(int) error, success string) string {
	if args == "" {
		return fmt.Sprintf("Specify the task number: /%s 1", command)
	}
	n, err := strconv.Atoi(args)
	if err != nil {
		return "Invalid task ID format."
	}
	if err := op(n); err != nil {
		if errors.Is(err, manager.ErrInvalidOrdinal) {
			return "Invalid task ID."
		}
		return "Error: " + err.Error()
	}
	return fmt.Sprintf(success, n)
}

type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
}

func New(token string, handler *Handler) (*Bot, error) {
	return NewWithClient(token, &http.Client{}, handler)
}

// NewWithClient - то же, что New, но запросы к Telegram идут через client.
func NewWithClient(token string, client *http.Client, handler *Handler) (*Bot, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, client)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	logger.Info(context.Background(), "Authorized on Telegram", "user", api.Self.UserName)
	return &Bot{api: api, handler: handler}, nil
}

// Start обрабатывает сообщения по одному, пока не отменен ctx.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("get updates: %w", err)
	}

	logger.Info(ctx, "Bot started")
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !b.handler.Allowed(msg.Chat.ID) {
		logger.Warn(ctx, "Message from unknown chat ignored", "chat", msg.Chat.ID)
		return
	}

	var reply string
	if msg.IsCommand() {
		reply = b.handler.Handle(ctx, msg.Command(), msg.CommandArguments())
	} else {
		reply = "Unknown command. Use /help for the list of commands."
	}

	logger.Debug(ctx, "Telegram command", "text", msg.Text)
	b.sendMessage(msg.Chat.ID, reply)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		logger.Error(context.Background(), err, "Error sending message")
	}
}
