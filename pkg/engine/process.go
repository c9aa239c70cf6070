package engine

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	apperrors "github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/tree"
)

// DefaultSentinel is the end-of-output line terminating each response when
// the engine configuration does not name one.
const DefaultSentinel = "EOS"

// stderrTailLines bounds how much engine stderr is kept for error context.
const stderrTailLines = 4

// ProcessConfig configures an engine backed by an external process.
type ProcessConfig struct {
	// Command is the executable to spawn.
	Command string
	// Args are the command arguments.
	Args []string
	// Sentinel is the line marking the end of one response.
	// Default: DefaultSentinel.
	Sentinel string
	// Logger receives the process's stderr lines. If nil, a no-op logger is
	// used.
	Logger *zap.Logger
}

// Validate applies defaults and checks required fields.
func (c *ProcessConfig) Validate() error {
	if c.Command == "" {
		return apperrors.Configuration("process engine requires a command", nil)
	}
	if c.Sentinel == "" {
		c.Sentinel = DefaultSentinel
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return nil
}

// ProcessEngine wraps a live external process. Requests and responses travel
// over the process's standard input/output as a line-oriented protocol: one
// request is exactly one line, the response is a sequence of result lines
// terminated by the sentinel line. Stderr is streamed to the logger and its
// tail is attached to teardown errors.
//
// A ProcessEngine is exclusively owned by one worker at a time; it performs
// no internal locking around the protocol pipes.
type ProcessEngine struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	scanner  *bufio.Scanner
	sentinel string
	closed   bool

	stderrDone chan struct{}

	mu         sync.Mutex
	stderrTail []string
}

// StartProcess spawns the external process and wires its pipes. Failure to
// start is a resource lifecycle error.
func StartProcess(cfg ProcessConfig) (*ProcessEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cmd := exec.Command(cfg.Command, cfg.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, apperrors.Lifecycle("opening stdin pipe for "+cfg.Command, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, apperrors.Lifecycle("opening stdout pipe for "+cfg.Command, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, apperrors.Lifecycle("opening stderr pipe for "+cfg.Command, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, apperrors.Lifecycle("starting engine process "+cfg.Command, err)
	}

	e := &ProcessEngine{
		cmd:        cmd,
		stdin:      stdin,
		scanner:    bufio.NewScanner(stdout),
		sentinel:   cfg.Sentinel,
		stderrDone: make(chan struct{}),
	}
	go e.drainStderr(stderr, cfg.Logger, cfg.Command)
	return e, nil
}

// drainStderr streams the process's stderr to the logger, keeping the last
// few lines for error context. It runs until the process closes its stderr.
func (e *ProcessEngine) drainStderr(r io.Reader, logger *zap.Logger, command string) {
	defer close(e.stderrDone)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		logger.Warn("engine stderr",
			zap.String("command", command),
			zap.String("line", line),
		)
		e.mu.Lock()
		e.stderrTail = append(e.stderrTail, line)
		if len(e.stderrTail) > stderrTailLines {
			e.stderrTail = e.stderrTail[1:]
		}
		e.mu.Unlock()
	}
}

// stderrContext returns the retained stderr tail, or "" if the process wrote
// nothing.
func (e *ProcessEngine) stderrContext() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return strings.Join(e.stderrTail, "; ")
}

// Annotate writes one request line and reads result lines up to the
// sentinel. Result lines are joined and decoded as a bracketed tree.
func (e *ProcessEngine) Annotate(ctx context.Context, tokens []string, pos []string) (*tree.Node, error) {
	if e.closed {
		return nil, apperrors.Lifecycle("annotate on closed engine", apperrors.ErrEngineClosed)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := io.WriteString(e.stdin, encodeRequest(tokens, pos)+"\n"); err != nil {
		return nil, apperrors.Lifecycle("writing annotation request", err)
	}

	var lines []string
	for e.scanner.Scan() {
		line := e.scanner.Text()
		if line == e.sentinel {
			if len(lines) == 0 {
				return nil, apperrors.Consistency("empty engine response", apperrors.ErrMalformedResponse)
			}
			return tree.Parse(strings.Join(lines, " "))
		}
		lines = append(lines, line)
	}
	if err := e.scanner.Err(); err != nil {
		return nil, apperrors.Consistency("reading engine response", err)
	}
	msg := "engine output ended before sentinel"
	if tail := e.stderrContext(); tail != "" {
		msg += " (stderr: " + tail + ")"
	}
	return nil, apperrors.Consistency(msg, apperrors.ErrMalformedResponse)
}

// Close closes the process's stdin, drains stderr, and waits for the process
// to exit. Failure to stop is a resource lifecycle error.
func (e *ProcessEngine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	_ = e.stdin.Close()
	// Reads from the stderr pipe must complete before Wait reaps it.
	<-e.stderrDone
	if err := e.cmd.Wait(); err != nil {
		msg := "stopping engine process"
		if tail := e.stderrContext(); tail != "" {
			msg += " (stderr: " + tail + ")"
		}
		return apperrors.Lifecycle(msg, err)
	}
	return nil
}

// ProcessFactory returns a Factory spawning one process per engine instance.
func ProcessFactory(cfg ProcessConfig) Factory {
	return func() (Engine, error) {
		return StartProcess(cfg)
	}
}
