package reminder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
)

type fakeCounter struct {
	count int
	err   error
}

func (f *fakeCounter) PendingCount(ctx context.Context) (int, error) {
	return f.count, f.err
}

type fakeNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeNotifier) SendText(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartRejectsBadSchedule(t *testing.T) {
	r := New(&fakeCounter{}, &fakeNotifier{}, 99, "not a cron spec", testLogger())
	if _, err := r.Start(context.Background()); err == nil {
		t.Fatal("expected scheduling error for malformed spec")
	}
}

func TestStartAndStop(t *testing.T) {
	r := New(&fakeCounter{count: 3}, &fakeNotifier{}, 99, "0 * * * *", testLogger())
	stop, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	stop()
}

func TestRunSkipsEmptyQueue(t *testing.T) {
	notifier := &fakeNotifier{}
	r := New(&fakeCounter{count: 0}, notifier, 99, "0 * * * *", testLogger())
	r.run(context.Background())
	if len(notifier.texts) != 0 {
		t.Errorf("empty queue should not notify, got %v", notifier.texts)
	}
}

func TestRunReportsPendingCount(t *testing.T) {
	notifier := &fakeNotifier{}
	r := New(&fakeCounter{count: 4}, notifier, 99, "0 * * * *", testLogger())
	r.run(context.Background())
	if len(notifier.texts) != 1 {
		t.Fatalf("want one reminder, got %d", len(notifier.texts))
	}
	want := "⏰ Reminder: 4 submission(s) waiting for review. Use /admin for details."
	if notifier.texts[0] != want {
		t.Errorf("reminder text = %q, want %q", notifier.texts[0], want)
	}
}

func TestRunSwallowsCounterError(t *testing.T) {
	notifier := &fakeNotifier{}
	r := New(&fakeCounter{err: fmt.Errorf("store offline")}, notifier, 99, "0 * * * *", testLogger())
	r.run(context.Background())
	if len(notifier.texts) != 0 {
		t.Errorf("counter failure should not notify, got %v", notifier.texts)
	}
}
