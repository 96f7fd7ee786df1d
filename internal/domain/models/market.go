package models

import "time"

// Ticker is one point-in-time snapshot entry for a tradable instrument,
// as returned by the market data source.
type Ticker struct {
	Symbol      string
	LastPrice   float64
	Turnover24h float64
	FundingRate float64
}

// PriceSample is a single observed price for a symbol. Immutable once created.
type PriceSample struct {
	Price      float64
	ObservedAt time.Time
}

// ScoreMap holds the per-symbol volatility scores computed on one tick.
// Symbols without enough samples in the window are absent, not zero.
type ScoreMap map[string]float64
