// Package procrunner executes external commands without shell
// interpretation, enforcing a timeout per invocation and classifying
// failures into the typed errors the pipeline package expects.
package procrunner

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"syscall"
	"time"

	graderrors "github.com/kyledewey/gradr/internal/errors"
	"github.com/kyledewey/gradr/internal/logger"
)

// Cmd is a single external command: a program plus its arguments, run
// from a working directory with an optional extra environment.
type Cmd struct {
	Program string
	Args    []string
	Dir     string
	Env     []string
}

func (c Cmd) build(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Program, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}
	return cmd
}

// classify maps an exec error, plus the context that bounded it, onto
// the project's typed error kinds.
func classify(ctx context.Context, program string, timeout time.Duration, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return &graderrors.TimeoutError{Program: program, Timeout: timeout.String()}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return &graderrors.SignalTerminationError{Program: program, Signal: int(status.Signal())}
		}
		return &graderrors.NonZeroExitError{Program: program, ExitCode: exitErr.ExitCode()}
	}

	return &graderrors.SpawnError{Program: program, Cause: err}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// Run spawns the command and waits for it to finish. A zero timeout
// means no timeout. Success is exit status zero only.
func Run(ctx context.Context, cmd Cmd, timeout time.Duration) error {
	runCtx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	logger.Debugf("running %s %v in %s", cmd.Program, cmd.Args, cmd.Dir)

	err := cmd.build(runCtx).Run()
	return classify(runCtx, cmd.Program, timeout, err)
}

// RunSequence invokes Run on each command in order, sharing the same
// timeout, stopping at the first error.
func RunSequence(ctx context.Context, cmds []Cmd, timeout time.Duration) error {
	for _, c := range cmds {
		if err := Run(ctx, c, timeout); err != nil {
			return err
		}
	}
	return nil
}

// StreamHandle exposes a running process's stdout as a channel of
// lines. The channel closes when the process's output ends or the
// timeout expires; Err returns the terminal classification, if any,
// once the channel has been fully drained.
type StreamHandle struct {
	Lines <-chan string
	done  <-chan error
}

// Err blocks until the process has finished and returns its terminal
// error, if any. Callers should range over Lines to completion first.
func (h *StreamHandle) Err() error {
	return <-h.done
}

// SpawnStreaming spawns the command and streams its stdout line by
// line. The returned handle's Lines channel is closed once the
// process's output is exhausted or the timeout fires.
func SpawnStreaming(ctx context.Context, cmd Cmd, timeout time.Duration) (*StreamHandle, error) {
	runCtx, cancel := withTimeout(ctx, timeout)

	c := cmd.build(runCtx)
	stdout, err := c.StdoutPipe()
	if err != nil {
		cancel()
		return nil, &graderrors.SpawnError{Program: cmd.Program, Cause: err}
	}
	c.Stderr = nil

	if err := c.Start(); err != nil {
		cancel()
		return nil, &graderrors.SpawnError{Program: cmd.Program, Cause: err}
	}

	lines := make(chan string)
	done := make(chan error, 1)

	go func() {
		defer cancel()
		defer close(lines)

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil && err != io.EOF {
			done <- classify(runCtx, cmd.Program, timeout, err)
			_ = c.Wait()
			return
		}

		waitErr := c.Wait()
		done <- classify(runCtx, cmd.Program, timeout, waitErr)
	}()

	return &StreamHandle{Lines: lines, done: done}, nil
}
