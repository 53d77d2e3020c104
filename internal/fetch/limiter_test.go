package fetch

import (
	"context"
	"testing"
	"time"
)

func TestLimiterSharedPerHost(t *testing.T) {
	l := NewLimiter(100, 1)
	a := l.hostLimiter("childes.example.org")
	b := l.hostLimiter("childes.example.org")
	c := l.hostLimiter("other.example.net")
	if a != b {
		t.Error("same host got two limiters")
	}
	if a == c {
		t.Error("different hosts share a limiter")
	}
}

func TestLimiterWaitCanceled(t *testing.T) {
	l := NewLimiter(100, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx, "https://childes.example.org/a"); err == nil {
		t.Error("expected error from canceled context")
	}
}

func TestLimiterWaitBadURL(t *testing.T) {
	l := NewLimiter(100, 1)
	if err := l.Wait(context.Background(), "ht tp://bad url"); err == nil {
		t.Error("expected parse error")
	}
}

func TestWaitWithDelayHonorsDelay(t *testing.T) {
	l := NewLimiter(1000, 10)
	start := time.Now()
	err := l.WaitWithDelay(context.Background(), "https://childes.example.org/", 20*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("returned after %v, want at least 20ms", elapsed)
	}
}

func TestWaitWithDelayCanceled(t *testing.T) {
	l := NewLimiter(1000, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.WaitWithDelay(ctx, "https://childes.example.org/", time.Hour); err == nil {
		t.Error("expected error from canceled context")
	}
}
