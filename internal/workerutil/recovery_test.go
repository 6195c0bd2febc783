package workerutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shorty/internal/testutil"
)

func fastOptions(maxRetries int) RecoveryOptions {
	return RecoveryOptions{
		InitialBackoff: time.Millisecond,
		MaxBackoff:     4 * time.Millisecond,
		MaxRetries:     maxRetries,
	}
}

func TestRunWithPanicRecoveryNormalExit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var runs, panics, fatals atomic.Int32

	opts := fastOptions(3)
	opts.OnPanic = func(string, int) { panics.Add(1) }
	opts.OnFatal = func(string, int) { fatals.Add(1) }
	RunWithPanicRecovery(ctx, "normal", &wg, func(ctx context.Context) {
		runs.Add(1)
		<-ctx.Done()
	}, opts)

	time.Sleep(10 * time.Millisecond)
	cancel()
	wg.Wait()

	if runs.Load() != 1 || panics.Load() != 0 || fatals.Load() != 0 {
		t.Fatalf("runs=%d panics=%d fatals=%d, want 1/0/0", runs.Load(), panics.Load(), fatals.Load())
	}
}

func TestRunWithPanicRecoveryRestartsAfterPanic(t *testing.T) {
	logBuf := testutil.CaptureLogBuffer(t, slog.LevelWarn)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	var runs atomic.Int32
	var attempts []int
	var mu sync.Mutex

	opts := fastOptions(5)
	opts.OnPanic = func(worker string, attempt int) {
		if worker != "watcher" {
			t.Errorf("OnPanic worker = %q, want watcher", worker)
		}
		mu.Lock()
		attempts = append(attempts, attempt)
		mu.Unlock()
	}
	RunWithPanicRecovery(ctx, "watcher", &wg, func(ctx context.Context) {
		if runs.Add(1) <= 2 {
			panic("transient failure")
		}
	}, opts)
	wg.Wait()

	if runs.Load() != 3 {
		t.Fatalf("runs = %d, want 3", runs.Load())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Fatalf("OnPanic attempts = %v, want [1 2]", attempts)
	}
	out := logBuf.String()
	for _, want := range []string{"recovered from panic", "transient failure", "restarting worker after panic"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestRunWithPanicRecoveryGivesUp(t *testing.T) {
	testutil.CaptureLogBuffer(t, slog.LevelError)
	var wg sync.WaitGroup
	var runs, panics atomic.Int32
	fatal := make(chan int, 1)

	opts := fastOptions(3)
	opts.OnPanic = func(string, int) { panics.Add(1) }
	opts.OnFatal = func(_ string, maxRetries int) { fatal <- maxRetries }
	RunWithPanicRecovery(context.Background(), "notifier", &wg, func(context.Context) {
		runs.Add(1)
		panic("always")
	}, opts)
	wg.Wait()

	if runs.Load() != 3 || panics.Load() != 3 {
		t.Fatalf("runs=%d panics=%d, want 3/3", runs.Load(), panics.Load())
	}
	select {
	case got := <-fatal:
		if got != 3 {
			t.Fatalf("OnFatal maxRetries = %d, want 3", got)
		}
	default:
		t.Fatal("OnFatal not called")
	}
}

func TestRunWithPanicRecoveryStopsOnCancelDuringBackoff(t *testing.T) {
	testutil.CaptureLogBuffer(t, slog.LevelError)
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var runs atomic.Int32

	opts := RecoveryOptions{InitialBackoff: time.Hour, MaxBackoff: time.Hour, MaxRetries: 5}
	RunWithPanicRecovery(ctx, "slow", &wg, func(context.Context) {
		runs.Add(1)
		panic("boom")
	}, opts)

	time.Sleep(20 * time.Millisecond)
	cancel()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop when ctx was cancelled during backoff")
	}
	if runs.Load() != 1 {
		t.Fatalf("runs = %d, want 1", runs.Load())
	}
}

func TestRecoveryOptionsWithDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   RecoveryOptions
		want RecoveryOptions
	}{
		{
			name: "zero values",
			in:   RecoveryOptions{},
			want: RecoveryOptions{InitialBackoff: defaultInitialBackoff, MaxBackoff: defaultMaxBackoff, MaxRetries: defaultMaxRetries},
		},
		{
			name: "max below initial",
			in:   RecoveryOptions{InitialBackoff: time.Second, MaxBackoff: time.Millisecond, MaxRetries: 2},
			want: RecoveryOptions{InitialBackoff: time.Second, MaxBackoff: time.Second, MaxRetries: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.withDefaults()
			if got.InitialBackoff != tt.want.InitialBackoff || got.MaxBackoff != tt.want.MaxBackoff || got.MaxRetries != tt.want.MaxRetries {
				t.Fatalf("withDefaults() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNextBackoff(t *testing.T) {
	tests := []struct {
		name    string
		current time.Duration
		max     time.Duration
		want    time.Duration
	}{
		{"doubles", 100 * time.Millisecond, time.Second, 200 * time.Millisecond},
		{"caps", 800 * time.Millisecond, time.Second, time.Second},
		{"at cap", time.Second, time.Second, time.Second},
		{"zero resets", 0, time.Second, defaultInitialBackoff},
		{"overflow", time.Duration(1 << 62), time.Duration(1<<63 - 1), time.Duration(1<<63 - 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextBackoff(tt.current, tt.max); got != tt.want {
				t.Fatalf("nextBackoff(%v, %v) = %v, want %v", tt.current, tt.max, got, tt.want)
			}
		})
	}
}
