package procrunner

import (
	"context"
	"errors"
	"testing"
	"time"

	graderrors "github.com/kyledewey/gradr/internal/errors"
)

func TestRunEchoOk(t *testing.T) {
	err := Run(context.Background(), Cmd{Program: "echo", Args: []string{"ok"}}, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	err := Run(context.Background(), Cmd{Program: "false"}, time.Second)
	var exitErr *graderrors.NonZeroExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("got %v, want *NonZeroExitError", err)
	}
}

func TestRunSpawnFailure(t *testing.T) {
	err := Run(context.Background(), Cmd{Program: "/no/such/program/anywhere"}, time.Second)
	var spawnErr *graderrors.SpawnError
	if !errors.As(err, &spawnErr) {
		t.Fatalf("got %v, want *SpawnError", err)
	}
}

func TestRunSignalTermination(t *testing.T) {
	err := Run(context.Background(), Cmd{Program: "sh", Args: []string{"-c", "kill -TERM $$"}}, time.Second)
	var sigErr *graderrors.SignalTerminationError
	if !errors.As(err, &sigErr) {
		t.Fatalf("got %v, want *SignalTerminationError", err)
	}
}

func TestRunTimeout(t *testing.T) {
	err := Run(context.Background(), Cmd{Program: "sleep", Args: []string{"5"}}, 10*time.Millisecond)
	var timeoutErr *graderrors.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("got %v, want *TimeoutError", err)
	}
}

func TestRunZeroTimeoutMeansNone(t *testing.T) {
	err := Run(context.Background(), Cmd{Program: "true"}, 0)
	if err != nil {
		t.Fatalf("unexpected error with zero timeout: %v", err)
	}
}

func TestRunSequenceEmptyIsSuccess(t *testing.T) {
	if err := RunSequence(context.Background(), nil, time.Second); err != nil {
		t.Fatalf("unexpected error for empty sequence: %v", err)
	}
}

func TestRunSequenceStopsOnFirstFailure(t *testing.T) {
	err := RunSequence(context.Background(), []Cmd{
		{Program: "true"},
		{Program: "false"},
		{Program: "true"},
	}, time.Second)
	if err == nil {
		t.Fatal("expected error from failing middle command")
	}
}

func TestSpawnStreamingMultiLineOutput(t *testing.T) {
	handle, err := SpawnStreaming(context.Background(), Cmd{
		Program: "printf",
		Args:    []string{"test1:PASS\ntest2:FAIL\n"},
	}, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var lines []string
	for line := range handle.Lines {
		lines = append(lines, line)
	}
	if err := handle.Err(); err != nil {
		t.Fatalf("unexpected stream error: %v", err)
	}
	if len(lines) != 2 || lines[0] != "test1:PASS" || lines[1] != "test2:FAIL" {
		t.Errorf("got %v, want [test1:PASS test2:FAIL]", lines)
	}
}

func TestSpawnStreamingSingleLine(t *testing.T) {
	handle, err := SpawnStreaming(context.Background(), Cmd{
		Program: "echo",
		Args:    []string{"hello"},
	}, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var lines []string
	for line := range handle.Lines {
		lines = append(lines, line)
	}
	if err := handle.Err(); err != nil {
		t.Fatalf("unexpected stream error: %v", err)
	}
	if len(lines) != 1 || lines[0] != "hello" {
		t.Errorf("got %v, want [hello]", lines)
	}
}
