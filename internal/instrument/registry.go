// Package instrument owns the shared symbol table. It is the only
// state shared across normalizer instances; every access goes through
// an atomic lookup-or-insert so concurrent first-sightings of the same
// symbol converge to a single record.
package instrument

import (
	"sync"
	"time"

	"github.com/tickforge/tickforge/internal/model"
)

type key struct {
	venue  string
	symbol string
}

// Registry maps (venue, symbol) to Instrument records and assigns
// stable instrument ids for the life of the process.
type Registry struct {
	mu     sync.RWMutex
	nextID int64
	byKey  map[key]model.Instrument
	byID   map[int64]model.Instrument
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		nextID: 1,
		byKey:  make(map[key]model.Instrument),
		byID:   make(map[int64]model.Instrument),
	}
}

// Seed pre-registers instruments, typically from config. Symbol/venue
// pairs already present keep their existing record.
func (r *Registry) Seed(venue string, symbols []string, assetClass string) {
	for _, s := range symbols {
		r.LookupOrCreate(venue, s, assetClass)
	}
}

// LookupOrCreate returns the instrument for (venue, symbol), creating
// it on first sight. The second return value reports whether a new
// record was created. Idempotent under concurrency: racing creators
// for the same symbol all receive the same record.
func (r *Registry) LookupOrCreate(venue, symbol, assetClass string) (model.Instrument, bool) {
	k := key{venue: venue, symbol: symbol}

	r.mu.RLock()
	inst, ok := r.byKey[k]
	r.mu.RUnlock()
	if ok {
		return inst, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock; another goroutine may have won.
	if inst, ok := r.byKey[k]; ok {
		return inst, false
	}

	inst = model.Instrument{
		ID:         r.nextID,
		Symbol:     symbol,
		Venue:      venue,
		AssetClass: assetClass,
		Status:     model.InstrumentActive,
		FirstSeen:  time.Now().UTC(),
	}
	r.nextID++
	r.byKey[k] = inst
	r.byID[inst.ID] = inst

	return inst, true
}

// Get returns an instrument by id.
func (r *Registry) Get(id int64) (model.Instrument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.byID[id]
	return inst, ok
}

// SetStatus updates lifecycle status, the only mutation instruments
// allow after creation.
func (r *Registry) SetStatus(id int64, status model.InstrumentStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.byID[id]
	if !ok {
		return false
	}
	inst.Status = status
	r.byID[id] = inst
	r.byKey[key{venue: inst.Venue, symbol: inst.Symbol}] = inst
	return true
}

// Len returns the number of registered instruments.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byKey)
}

// All returns a snapshot of every registered instrument.
func (r *Registry) All() []model.Instrument {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Instrument, 0, len(r.byID))
	for _, inst := range r.byID {
		out = append(out, inst)
	}
	return out
}
