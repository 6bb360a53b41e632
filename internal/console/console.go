package console

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/mutker/picoctl/internal/errors"
	"codeberg.org/mutker/picoctl/internal/governor"
	"codeberg.org/mutker/picoctl/internal/logger"
	"github.com/chzyer/readline"
)

// Console owns the readline instance and a goroutine reading lines from
// it. Lines are delivered over a channel so the host loop can execute
// them in the same context that drives Tick; the governor is never
// touched from the readline goroutine.
type Console struct {
	rl    *readline.Instance
	lines chan string
}

func New() (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "picoctl> ",
		HistoryFile: historyFilePath(),
	})
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrInitConsole, err)
	}

	return &Console{
		rl:    rl,
		lines: make(chan string, 8),
	}, nil
}

// Lines returns the channel the reading goroutine delivers input on.
func (c *Console) Lines() <-chan string {
	return c.lines
}

// Run reads lines until EOF, interrupt or context cancellation. Call it
// in its own goroutine; cancel is invoked on Ctrl+C so the host loop
// shuts down.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer close(c.lines)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			cancel()
			return
		}
		if err != nil {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		select {
		case c.lines <- line:
		case <-ctx.Done():
			return
		}
	}
}

// Execute parses and dispatches one line against the governor, printing
// the reply without clobbering the prompt.
func (c *Console) Execute(gov *governor.Governor, line string) {
	cmd, err := Parse(line)
	if err != nil {
		c.print("unknown command, type 'help'")
		return
	}

	reply, err := Dispatch(gov, cmd)
	if err != nil {
		c.print("unknown command, type 'help'")
		return
	}
	c.print(reply)
}

func (c *Console) Close() error {
	return c.rl.Close()
}

func (c *Console) print(text string) {
	c.rl.Clean()
	fmt.Println(text)
	c.rl.Refresh()
}

func historyFilePath() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		cacheDir = filepath.Join(home, ".cache")
	}

	dir := filepath.Join(cacheDir, "picoctl")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		logger.Debug().Err(err).Msg("cannot create history directory")
		return ""
	}

	return filepath.Join(dir, "history")
}
