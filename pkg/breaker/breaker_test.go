package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cb := New[string](Config{Name: "gateway", Failures: 2, Timeout: time.Minute}, nil)
	boom := errors.New("gateway down")

	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(func() (string, error) { return "", boom }); !errors.Is(err, boom) {
			t.Fatalf("attempt %d: expected gateway error, got %v", i, err)
		}
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", cb.State())
	}

	called := false
	_, err := cb.Execute(func() (string, error) {
		called = true
		return "ok", nil
	})
	if !IsRejected(err) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if called {
		t.Fatalf("open breaker must not invoke the call")
	}
}

func TestBreakerPassesResults(t *testing.T) {
	cb := New[int](Config{Name: "calc"}, nil)
	got, err := cb.Execute(func() (int, error) { return 42, nil })
	if err != nil || got != 42 {
		t.Fatalf("unexpected result %d (%v)", got, err)
	}
	if IsRejected(errors.New("other")) {
		t.Fatalf("plain errors are not rejections")
	}
}
