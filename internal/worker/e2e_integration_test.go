//go:build integration

package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/kyledewey/gradr/internal/migrations"
	"github.com/kyledewey/gradr/internal/notification"
	"github.com/kyledewey/gradr/internal/pipeline"
	"github.com/kyledewey/gradr/internal/store"
	"github.com/kyledewey/gradr/internal/testutil"
)

// TestFullCycleListenerToStoreToWorker drives a push notification
// through the HTTP listener, the Postgres-backed store, and a worker
// step, and checks that the resulting Build row lands in status Done
// with a results payload naming both tests and their verdicts.
func TestFullCycleListenerToStoreToWorker(t *testing.T) {
	ctx := context.Background()

	connString, cleanup := testutil.SetupPostgresContainer(t)
	t.Cleanup(cleanup)

	s, err := store.NewPostgresStore(ctx, connString)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(s.Close)

	if err := migrations.Bootstrap(ctx, s.Pool()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Pool().Exec(ctx, `INSERT INTO users (github_username) VALUES ($1)`, "alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Pool().Exec(ctx,
		`INSERT INTO assignments (git_project_name, course_id) VALUES ($1, $2)`, "hw1", 1,
	); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src := notification.NewHTTPSource(":18080", 8)
	go func() {
		if err := src.ListenAndServe(); err != nil {
			t.Logf("listener exited: %v", err)
		}
	}()
	t.Cleanup(func() { _ = src.Close(context.Background()) })
	time.Sleep(50 * time.Millisecond) // let the listener start accepting

	body, err := json.Marshal(map[string]string{
		"clone_url": "https://host/alice/hw1.git",
		"branch":    "testing",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := http.Post("http://localhost:18080/hooks/push", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error posting push notification: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("got status %d, want %d", resp.StatusCode, http.StatusAccepted)
	}

	ok, err := src.Step(ctx, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("Step reported no notification processed")
	}

	loop := NewLoop(s, func(pb *store.PendingBuild) Buildable {
		return &pipeline.LocalMakefilePipeline{
			Dir:          t.TempDir(),
			MakefilePath: filepath.Join("..", "pipeline", "testdata", "two_distinct_tests", "makefile"),
			Timeout:      5 * time.Second,
		}
	})
	if err := loop.Step(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var status int
	var results string
	if err := s.Pool().QueryRow(ctx,
		`SELECT status, results FROM builds ORDER BY id DESC LIMIT 1`,
	).Scan(&status, &results); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Status(status) != store.Done {
		t.Errorf("got status %d, want Done", status)
	}
	if !bytes.Contains([]byte(results), []byte(`"test1":true`)) {
		t.Errorf("results %q missing test1=true", results)
	}
	if !bytes.Contains([]byte(results), []byte(`"test2":false`)) {
		t.Errorf("results %q missing test2=false", results)
	}
}
