package repository

import (
	"time"

	"volscan/internal/domain/models"
	"volscan/internal/domain/repository"
)

type symbolState struct {
	samples      []models.PriceSample // insertion order == time order
	latestVolume float64
}

// PriceHistory is the in-memory rolling sample log behind HistoryStore.
// Not safe for concurrent use: the scan cycle is the only writer and
// reader, so no locking is carried here.
type PriceHistory struct {
	m map[string]*symbolState
}

// NewPriceHistory creates an empty history store.
func NewPriceHistory() repository.HistoryStore {
	return &PriceHistory{m: make(map[string]*symbolState)}
}

func (h *PriceHistory) state(symbol string) *symbolState {
	st, ok := h.m[symbol]
	if !ok {
		st = &symbolState{}
		h.m[symbol] = st
	}
	return st
}

// Append adds one sample to the symbol's log.
func (h *PriceHistory) Append(symbol string, s models.PriceSample) {
	st := h.state(symbol)
	st.samples = append(st.samples, s)
}

// SetVolume overwrites the symbol's latest 24h turnover.
func (h *PriceHistory) SetVolume(symbol string, v float64) {
	h.state(symbol).latestVolume = v
}

// Volume returns the symbol's latest 24h turnover, zero if unknown.
func (h *PriceHistory) Volume(symbol string) float64 {
	if st, ok := h.m[symbol]; ok {
		return st.latestVolume
	}
	return 0
}

// Windowed returns samples with ObservedAt >= now-d, in time order.
// Samples are appended in time order, so this is a suffix scan.
func (h *PriceHistory) Windowed(symbol string, d time.Duration, now time.Time) []models.PriceSample {
	st, ok := h.m[symbol]
	if !ok {
		return nil
	}
	cutoff := now.Add(-d)
	i := len(st.samples)
	for i > 0 && !st.samples[i-1].ObservedAt.Before(cutoff) {
		i--
	}
	return st.samples[i:]
}

// Symbols lists every symbol that has ever been ingested.
func (h *PriceHistory) Symbols() []string {
	out := make([]string, 0, len(h.m))
	for s := range h.m {
		out = append(out, s)
	}
	return out
}

// Prune replaces each symbol's log with only samples newer than maxAge.
// Symbols whose log empties out keep their state so latestVolume survives
// between fetch gaps.
func (h *PriceHistory) Prune(maxAge time.Duration, now time.Time) {
	cutoff := now.Add(-maxAge)
	for _, st := range h.m {
		i := 0
		for i < len(st.samples) && st.samples[i].ObservedAt.Before(cutoff) {
			i++
		}
		if i == 0 {
			continue
		}
		kept := make([]models.PriceSample, len(st.samples)-i)
		copy(kept, st.samples[i:])
		st.samples = kept
	}
}
