package notification

import (
	"context"
	"testing"

	"github.com/kyledewey/gradr/internal/cloneurl"
)

type fakeEnqueuer struct {
	enqueued []*PushNotification
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, n *PushNotification) error {
	f.enqueued = append(f.enqueued, n)
	return nil
}

func mustCloneURL(t *testing.T) *cloneurl.CloneUrl {
	t.Helper()
	cu, err := cloneurl.Parse("https://github.com/kyledewey/gradr.git")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return cu
}

func TestChannelSourceNextDeliversSentNotification(t *testing.T) {
	src := NewChannelSource(1)
	want := &PushNotification{CloneURL: mustCloneURL(t), Branch: "main"}
	src.Send(want)

	got, err := src.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestChannelSourceCloseSignalsShutdown(t *testing.T) {
	src := NewChannelSource(1)
	src.Close()

	got, err := src.Next(context.Background())
	if err != nil || got != nil {
		t.Errorf("got (%v, %v), want (nil, nil) after close", got, err)
	}
}

func TestChannelSourceStepEnqueuesAndReportsTrue(t *testing.T) {
	src := NewChannelSource(1)
	src.Send(&PushNotification{CloneURL: mustCloneURL(t), Branch: "main"})

	enq := &fakeEnqueuer{}
	processed, err := src.Step(context.Background(), enq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !processed {
		t.Error("got false, want true")
	}
	if len(enq.enqueued) != 1 {
		t.Errorf("got %d enqueued, want 1", len(enq.enqueued))
	}
}

func TestChannelSourceStepOnShutdownReportsFalse(t *testing.T) {
	src := NewChannelSource(1)
	src.Close()

	processed, err := src.Step(context.Background(), &fakeEnqueuer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processed {
		t.Error("got true, want false on shutdown")
	}
}
