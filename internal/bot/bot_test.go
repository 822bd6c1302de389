package bot

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"escrow-bot/internal/escrow"
)

func TestUserMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{escrow.ErrNotAuthorized, "❌ You are not allowed to use this command."},
		{escrow.ErrInsufficientHold, "❌ Cut exceeds remaining hold."},
		{fmt.Errorf("deal DL-ABC123: %w", escrow.ErrNotFound), "❌ Deal not found."},
		{errors.New("pool exhausted"), "❌ Something went wrong, try again later."},
	}
	for _, c := range cases {
		if got := userMessage(c.err); got != c.want {
			t.Fatalf("userMessage(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestUserMessagePartialCountersDoesNotPromiseRetry(t *testing.T) {
	// The counters gate is spent once claimed; a failed increment is never
	// retried, so the message must not say it will be.
	got := userMessage(fmt.Errorf("deal DL-ABC123: %w", escrow.ErrPartialCounters))
	if !strings.HasPrefix(got, "⚠️ Deal closed") {
		t.Fatalf("message = %q, want closure acknowledged", got)
	}
	if strings.Contains(strings.ToLower(got), "retried") {
		t.Fatalf("message = %q, promises a retry that never happens", got)
	}
}
