package models

// Frame type discriminators for the replay channel.
const (
	FrameTypeStatus = "STATUS"
	FrameTypeCandle = "CANDLE"
)

// Replay status messages.
const (
	StatusReplayStarting = "replay_starting"
	StatusReplayComplete = "replay_complete"
	StatusNoCandles      = "No candles found for ticker"
)

// StatusFrame frames replay lifecycle events.
type StatusFrame struct {
	Type         string `json:"type"`
	Message      string `json:"message"`
	Ticker       string `json:"ticker"`
	TfMin        int    `json:"tf_min"`
	StepSeconds  int    `json:"step_seconds"`
	TotalCandles int    `json:"total_candles"`
}

// CandleFrame carries one replayed candle. Seq is the 0-based position in the
// chronological history, independent of any REST ordering option.
type CandleFrame struct {
	Type   string `json:"type"`
	Candle Candle `json:"candle"`
	Seq    int    `json:"seq"`
}
