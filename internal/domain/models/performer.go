package models

import "time"

// Selection is the ranked pick for one minute before enrichment.
// Found is false when no symbol passed the liquidity floor; that is a
// valid empty result, not an error.
type Selection struct {
	Symbol string
	Score  float64
	Volume float64
	Moves  int
	Found  bool
}

// PerformerResult is the finalized per-minute artifact. Immutable once
// published. Turnover is in millions of quote currency (2 decimals),
// FundingRate in percent (4 decimals).
type PerformerResult struct {
	Symbol      string    `json:"symbol"`
	Moves       int       `json:"moves"`
	Turnover    float64   `json:"turnover"`
	FundingRate float64   `json:"fundingRate"`
	At          time.Time `json:"at"`
}
