package models

import "time"

// Candle is one OHLCV bar for a ticker and timeframe. Candles are owned by the
// store and never mutated by this service; identity is (ticker, tf_min, ts).
type Candle struct {
	Ticker       string    `json:"ticker"`
	TfMin        int       `json:"tf_min"`
	Ts           time.Time `json:"ts"`
	Open         float64   `json:"open"`
	High         float64   `json:"high"`
	Low          float64   `json:"low"`
	Close        float64   `json:"close"`
	Volume       float64   `json:"volume"`
	OpenInterest int64     `json:"openint"`
}

// CandleResponse is the REST body for candle listings.
type CandleResponse struct {
	Data  []Candle `json:"data"`
	Count int      `json:"count"`
}

// SymbolsResponse is the REST body for symbol listings.
type SymbolsResponse struct {
	Symbols []string `json:"symbols"`
	Count   int      `json:"count"`
}

// CandleMetaResponse reports the first and last stored timestamp for a
// ticker+timeframe. Both are null when no rows exist; absence is not an error.
type CandleMetaResponse struct {
	Ticker  string     `json:"ticker"`
	TfMin   int        `json:"tf_min"`
	FirstTs *time.Time `json:"first_ts"`
	LastTs  *time.Time `json:"last_ts"`
}

// HealthResponse reports service and store connectivity status.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}
