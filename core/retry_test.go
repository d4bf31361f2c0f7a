package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicyDo(t *testing.T) {
	tests := []struct {
		name         string
		maxAttempts  int
		failuresLeft int
		wantAttempts int
		wantErr      bool
	}{
		{name: "first attempt succeeds", maxAttempts: 2, failuresLeft: 0, wantAttempts: 1, wantErr: false},
		{name: "retry succeeds", maxAttempts: 2, failuresLeft: 1, wantAttempts: 2, wantErr: false},
		{name: "attempts exhausted", maxAttempts: 2, failuresLeft: 5, wantAttempts: 2, wantErr: true},
		{name: "zero attempts treated as one", maxAttempts: 0, failuresLeft: 0, wantAttempts: 1, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := RetryPolicy{MaxAttempts: tt.maxAttempts, Backoff: 0}
			attempts := 0
			failures := tt.failuresLeft

			err := policy.Do(context.Background(), func(attempt int) error {
				attempts++
				if attempt != attempts {
					t.Errorf("attempt number = %d, want %d", attempt, attempts)
				}
				if failures > 0 {
					failures--
					return errors.New("transient")
				}
				return nil
			})

			if (err != nil) != tt.wantErr {
				t.Errorf("Do() error = %v, wantErr %v", err, tt.wantErr)
			}
			if attempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", attempts, tt.wantAttempts)
			}
		})
	}
}

func TestRetryPolicyContextCancellation(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Backoff: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	go func() {
		// Cancel while Do is waiting out the backoff before attempt 2.
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := policy.Do(ctx, func(attempt int) error {
		attempts++
		return errors.New("always fails")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no attempt after cancellation)", attempts)
	}
}

func TestRetryPolicyReturnsLastError(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 2, Backoff: 0}
	errFirst := errors.New("first failure")
	errSecond := errors.New("second failure")

	err := policy.Do(context.Background(), func(attempt int) error {
		if attempt == 1 {
			return errFirst
		}
		return errSecond
	})

	if !errors.Is(err, errSecond) {
		t.Errorf("Do() error = %v, want the last failure", err)
	}
}
