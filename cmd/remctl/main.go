// Package main is the entrypoint for the remctl command-line client.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/beamtime/remclient/internal/config"
	"github.com/beamtime/remclient/pkg/client"
)

const usage = `Usage: remctl [command]
       remctl status               Print the manager status document.
       remctl ping                 Check manager availability.
       remctl queue get            Print the queue contents.
       remctl queue start          Start execution of the queue.
       remctl queue stop           Stop the queue after the current item.
       remctl queue clear          Remove all items from the queue.
       remctl env open             Open the worker environment and wait.
       remctl env close            Close the worker environment and wait.
       remctl history get          Print the history of completed items.
       remctl history clear        Remove all items from the history.
       remctl wait-idle [timeout]  Block until the manager is idle (default 600s).
       remctl monitor              Stream console output until interrupted.

Commands:
  status          Print the manager status document as JSON.
  ping            Check manager availability.
  queue <op>      Queue operations: get, start, stop, clear.
  env <op>        Worker environment operations: open, close.
  history <op>    History operations: get, clear.
  wait-idle       Block until the manager state is "idle".
  monitor         Subscribe to console output and print it.

Environment: REM_PROTOCOL (comms|http, default comms), REM_COMMS_URL, REM_CONTROL_SUBJECT, REM_HTTP_SERVER_URI, LOG_LEVEL. See README.
`

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 && args[0] != "" {
		cmd = args[0]
	}

	switch cmd {
	case "help", "-h", "--help", "":
		fmt.Print(usage)
		return
	}

	c, err := newClient()
	if err != nil {
		log.Fatalf("remctl: %v", err)
	}
	defer c.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch cmd {
	case "status":
		printResponse(runStatus(ctx, c))
	case "ping":
		printResponse(c.Ping(ctx))
	case "queue":
		runQueue(ctx, c, args[1:])
	case "env":
		runEnv(ctx, c, args[1:])
	case "history":
		runHistory(ctx, c, args[1:])
	case "wait-idle":
		timeout := client.DefaultWaitTimeout
		if len(args) > 1 {
			d, err := time.ParseDuration(args[1])
			if err != nil {
				log.Fatalf("remctl wait-idle: invalid timeout %q: %v", args[1], err)
			}
			timeout = d
		}
		if err := c.WaitForIdle(ctx, client.WaitParams{Timeout: timeout}); err != nil {
			log.Fatalf("remctl wait-idle: %v", err)
		}
		fmt.Println("Manager is idle.")
	case "monitor":
		if err := runMonitor(ctx, c); err != nil {
			log.Fatalf("remctl monitor: %v", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q.\n%s", cmd, usage)
		os.Exit(1)
	}
}

func newClient() (*client.Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	setupLogging(cfg.LogLevel)

	protocol := strings.ToLower(os.Getenv("REM_PROTOCOL"))
	switch protocol {
	case "http":
		return client.NewHTTPClient(client.HTTPClientParams{Config: cfg})
	case "comms", "":
		return client.NewCommsClient(client.CommsClientParams{Config: cfg})
	default:
		return nil, fmt.Errorf("unknown protocol %q (use comms or http)", protocol)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func runStatus(ctx context.Context, c *client.Client) (map[string]any, error) {
	snap, err := c.Status(ctx, true)
	if err != nil {
		return nil, err
	}
	return snap.Fields(), nil
}

func runQueue(ctx context.Context, c *client.Client, args []string) {
	if len(args) < 1 {
		log.Fatalf("remctl queue: require subcommand (get, start, stop, clear)")
	}
	switch args[0] {
	case "get":
		printResponse(c.QueueGet(ctx))
	case "start":
		printResponse(c.QueueStart(ctx))
	case "stop":
		printResponse(c.QueueStop(ctx))
	case "clear":
		printResponse(c.QueueClear(ctx))
	default:
		log.Fatalf("remctl queue: unknown subcommand %q (use get, start, stop, clear)", args[0])
	}
}

func runEnv(ctx context.Context, c *client.Client, args []string) {
	if len(args) < 1 {
		log.Fatalf("remctl env: require subcommand (open, close)")
	}
	switch args[0] {
	case "open":
		if _, err := c.EnvironmentOpen(ctx); err != nil {
			log.Fatalf("remctl env open: %v", err)
		}
		if err := c.WaitForEnvironmentOpen(ctx, client.WaitParams{}); err != nil {
			log.Fatalf("remctl env open: %v", err)
		}
		fmt.Println("Worker environment is open.")
	case "close":
		if _, err := c.EnvironmentClose(ctx); err != nil {
			log.Fatalf("remctl env close: %v", err)
		}
		if err := c.WaitForEnvironmentClose(ctx, client.WaitParams{}); err != nil {
			log.Fatalf("remctl env close: %v", err)
		}
		fmt.Println("Worker environment is closed.")
	default:
		log.Fatalf("remctl env: unknown subcommand %q (use open, close)", args[0])
	}
}

func runHistory(ctx context.Context, c *client.Client, args []string) {
	if len(args) < 1 {
		log.Fatalf("remctl history: require subcommand (get, clear)")
	}
	switch args[0] {
	case "get":
		printResponse(c.HistoryGet(ctx))
	case "clear":
		printResponse(c.HistoryClear(ctx))
	default:
		log.Fatalf("remctl history: unknown subcommand %q (use get, clear)", args[0])
	}
}

func runMonitor(ctx context.Context, c *client.Client) error {
	mon := c.ConsoleMonitor()
	if mon == nil {
		return fmt.Errorf("console monitor is not available")
	}
	if err := mon.Enable(); err != nil {
		return err
	}
	defer mon.Disable()

	for {
		msg, err := mon.NextMsg(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if text, ok := msg["msg"].(string); ok {
			fmt.Print(text)
		}
	}
}

func printResponse(resp map[string]any, err error) {
	if err != nil {
		log.Fatalf("remctl: %v", err)
	}
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		log.Fatalf("remctl: encode response: %v", err)
	}
	fmt.Println(string(data))
}
