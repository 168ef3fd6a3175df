package ingest

import (
	"testing"
	"time"
)

func TestBackoffNoJitter(t *testing.T) {
	b := Backoff{Base: time.Second, Max: 8 * time.Second}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 8 * time.Second}, // capped
		{10, 8 * time.Second},
	}
	for _, c := range cases {
		if got := b.Next(c.attempt); got != c.want {
			t.Errorf("Next(%d) = %v, want %v", c.attempt, got, c.want)
		}
	}
}

func TestBackoffJitterBounds(t *testing.T) {
	b := Backoff{Base: time.Second, Max: time.Minute, Jitter: 0.2}

	for i := 0; i < 100; i++ {
		got := b.Next(3) // 4s nominal
		min := 3200 * time.Millisecond
		max := 4800 * time.Millisecond
		if got < min || got > max {
			t.Fatalf("Next(3) = %v, want within [%v, %v]", got, min, max)
		}
	}
}

func TestBackoffDefaults(t *testing.T) {
	var b Backoff
	if got := b.Next(1); got != time.Second {
		t.Errorf("zero-value Next(1) = %v, want 1s", got)
	}
	if got := b.Next(20); got != time.Minute {
		t.Errorf("zero-value Next(20) = %v, want capped at 1m", got)
	}
}
