package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"tasklist/internal/config"
	"tasklist/internal/console"
	"tasklist/internal/export"
	"tasklist/internal/logger"
	"tasklist/internal/manager"
	"tasklist/internal/server"
	"tasklist/internal/storage"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("todo-app", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printHelp(fs) }

	cfg, err := config.Load(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	logger.SetOutput(stderr)
	logger.SetPretty(cfg.Pretty)
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	st, err := storage.Open(cfg.Backend, cfg.File)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening storage: %v\n", err)
		return 1
	}
	defer st.Close()

	tm := manager.NewTaskManagerWithStorage(st)

	if rest := fs.Args(); len(rest) > 0 {
		switch rest[0] {
		case "export":
			return handleExportCommand(ctx, tm, rest[1:], stdout, stderr)
		default:
			fmt.Fprintf(stderr, "Unknown command: %s\n", rest[0])
			printHelp(fs)
			return 2
		}
	}

	c := console.New(tm, stdin, stdout)
	// загружаем задачи при старте
	c.Load(ctx)

	if cfg.HTTPAddr != "" {
		srv := &http.Server{Addr: cfg.HTTPAddr, Handler: server.NewRouter(tm)}
		go func() {
			logger.Info(ctx, "HTTP API listening", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, err, "HTTP server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	if err := c.Run(ctx); err != nil {
		logger.Error(ctx, err, "Console stopped")
		return 1
	}
	return 0
}

func handleExportCommand(ctx context.Context, tm *manager.TaskManager, args []string, stdout, stderr io.Writer) int {
	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportCmd.SetOutput(stderr)
	format := exportCmd.String("format", export.FormatJSON, "Export format (json|csv|pdf)")
	outFile := exportCmd.String("out", "", "Output file path (default stdout)")
	if err := exportCmd.Parse(args); err != nil {
		return 2
	}

	if err := tm.Load(ctx); err != nil {
		fmt.Fprintf(stderr, "Error loading tasks: %v\n", err)
		return 1
	}

	data, err := export.Export(tm.GetAllTasks(), *format)
	if err != nil {
		fmt.Fprintf(stderr, "Error exporting tasks: %v\n", err)
		return 1
	}

	if *outFile == "" {
		stdout.Write(data)
		return 0
	}
	if err := os.WriteFile(*outFile, data, 0644); err != nil {
		fmt.Fprintf(stderr, "Error exporting tasks: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Tasks exported to %s in %s format\n", *outFile, *format)
	return 0
}

func printHelp(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, `Usage: todo-app [flags] [export -format=json|csv|pdf [-out=FILE]]

Without a command, starts the interactive task menu. Tasks are loaded from the
tasks file on start and saved on exit.

Flags:`)
	fs.PrintDefaults()
}
