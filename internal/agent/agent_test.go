package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestWaitGroupReturnsWhenDone(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := waitGroup(ctx, &wg); err != nil {
		t.Fatalf("waitGroup: %v", err)
	}
}

func TestWaitGroupBoundedByContext(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	defer wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := waitGroup(ctx, &wg)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("waitGroup blocked for %s", elapsed)
	}
}
