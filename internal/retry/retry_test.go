package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestPolicyDo_SucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	var logged []int
	p := Policy{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		OnRetry: func(attempt, maxAttempts int, backoff time.Duration, err error) {
			logged = append(logged, attempt)
		},
	}

	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &StatusError{Code: 503}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if len(logged) != 2 {
		t.Errorf("expected 2 retry log entries, got %d", len(logged))
	}
}

func TestPolicyDo_SingleAttemptByDefault(t *testing.T) {
	calls := 0
	err := Policy{}.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return &StatusError{Code: 500}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 call, got %d", calls)
	}
}

func TestPolicyDo_NonRetryableReturnsImmediately(t *testing.T) {
	calls := 0
	p := Policy{MaxAttempts: 5, InitialBackoff: time.Millisecond}
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return &StatusError{Code: 404}
	})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != 404 {
		t.Fatalf("expected 404 status error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestPolicyDo_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := Policy{MaxAttempts: 5, InitialBackoff: time.Hour}
	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, func(ctx context.Context) error {
			calls++
			return &StatusError{Code: 502}
		})
	}()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error after cancellation")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}

func TestIsRetryable(t *testing.T) {
	testCases := []struct {
		err      error
		expected bool
	}{
		{nil, false},
		{&StatusError{Code: 500}, true},
		{&StatusError{Code: 504}, true},
		{&StatusError{Code: 404}, false},
		{&StatusError{Code: 429}, false},
		{fmt.Errorf("wrapped: %w", &StatusError{Code: 503}), true},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("lookup example.test: no such host"), true},
		{context.Canceled, false},
		{errors.New("something else"), false},
	}

	for _, tc := range testCases {
		if got := IsRetryable(tc.err); got != tc.expected {
			t.Errorf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.expected)
		}
	}
}

func TestIsRateLimited(t *testing.T) {
	if !IsRateLimited(&StatusError{Code: 429}) {
		t.Error("expected 429 to be rate limited")
	}
	if IsRateLimited(&StatusError{Code: 503}) {
		t.Error("expected 503 not to be rate limited")
	}
	if IsRateLimited(nil) {
		t.Error("expected nil not to be rate limited")
	}
}
