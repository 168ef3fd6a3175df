package router

import (
	"time"

	"github.com/tickforge/tickforge/internal/model"
)

// Priority is the routing class assigned to a tick.
type Priority int

const (
	Fast Priority = iota // latency-sensitive, drop-oldest on overflow
	Warm                 // backpressured
	Cold                 // backpressured, lowest urgency
)

func (p Priority) String() string {
	switch p {
	case Fast:
		return "fast"
	case Warm:
		return "warm"
	case Cold:
		return "cold"
	}
	return "unknown"
}

// Rules is the static classification configuration. Classification is
// a pure function of Tick + Rules, never of engine state.
type Rules struct {
	watchlist  map[string]struct{}
	staleAfter time.Duration
}

// NewRules builds the classification rule set.
func NewRules(watchlist []string, staleAfter time.Duration) Rules {
	wl := make(map[string]struct{}, len(watchlist))
	for _, s := range watchlist {
		wl[s] = struct{}{}
	}
	return Rules{watchlist: wl, staleAfter: staleAfter}
}

// Classify assigns a priority class. Rules are evaluated in order:
// watchlisted symbols are always FAST; events that arrived stale go
// COLD; trades are FAST; quotes are WARM; everything else is COLD.
func Classify(t model.Tick, r Rules) Priority {
	if _, ok := r.watchlist[t.Symbol]; ok {
		return Fast
	}
	if r.staleAfter > 0 && t.ReceivedAt.Sub(t.EventTS) > r.staleAfter {
		return Cold
	}
	switch t.EventType {
	case model.EventTrade:
		return Fast
	case model.EventQuote:
		return Warm
	default:
		return Cold
	}
}
