package ingestion

import (
	"errors"
	"testing"
	"time"
)

func TestRetryPolicy_SucceedsAfterTransientFailures(t *testing.T) {
	p := RetryPolicy{MaxRetries: 4, InitialInterval: time.Millisecond}

	attempts := 0
	err := p.Do(func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts: got %d want 3", attempts)
	}
}

func TestRetryPolicy_GivesUpAfterMaxRetries(t *testing.T) {
	p := RetryPolicy{MaxRetries: 2, InitialInterval: time.Millisecond}

	attempts := 0
	wantErr := errors.New("still broken")
	err := p.Do(func() error {
		attempts++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("want underlying error, got %v", err)
	}
	// 1 initial attempt + 2 retries.
	if attempts != 3 {
		t.Fatalf("attempts: got %d want 3", attempts)
	}
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	if p.MaxRetries != 4 || p.InitialInterval != 250*time.Millisecond {
		t.Fatalf("defaults: %+v", p)
	}
}
