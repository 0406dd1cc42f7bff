package workflow

import (
	"context"
	"testing"
	"time"
)

func TestNextBackoff(t *testing.T) {
	cases := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 5 * time.Second},
		{1, 5 * time.Second},
		{2, 10 * time.Second},
		{4, 40 * time.Second},
		{12, maxBackoff},
		{50, maxBackoff},
	}
	for _, tc := range cases {
		if got := NextBackoff(5*time.Second, tc.attempt); got != tc.expected {
			t.Fatalf("attempt %d expected %s, got %s", tc.attempt, tc.expected, got)
		}
	}
}

func TestDispatchOnce_WithoutDatabase(t *testing.T) {
	d := NewOutboxDispatcher(nil, nil)
	if sent := d.DispatchOnce(context.Background()); sent != 0 {
		t.Fatalf("expected nothing sent without a database, got %d", sent)
	}
}

func TestRun_StopsWhenCancelled(t *testing.T) {
	d := NewOutboxDispatcher(nil, nil)
	d.PollInterval = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
