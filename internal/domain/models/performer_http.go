package models

// Requests for the performer HTTP endpoints. Defined in domain for consistency and reuse.

type PollRequest struct {
	Since int64 `query:"since" json:"since" default:"0" validate:"gte=0"`
}

type HistoryRequest struct {
	Hours int    `query:"hours" json:"hours" default:"24" validate:"gte=1,lte=24"`
	After string `query:"after" json:"after,omitempty"`
}
