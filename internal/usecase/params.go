package usecase

import (
	"strings"
	"time"

	"candlerelay/internal/domain/fault"
	"candlerelay/internal/domain/models"
	domrepo "candlerelay/internal/domain/repository"
	"candlerelay/pkg/util"
)

// LimitPolicy carries the configured result-set bounds.
type LimitPolicy struct {
	Max            int
	SymbolsDefault int
	CandlesDefault int
	DefaultTfMin   int
}

// StepPolicy carries the configured replay pacing bounds.
type StepPolicy struct {
	Min     int
	Max     int
	Default int
}

// SymbolsQuery is a validated symbol-listing descriptor.
type SymbolsQuery struct {
	Limit  int
	Prefix string
}

// CandlesQuery is a validated candle-listing descriptor.
type CandlesQuery struct {
	Ticker string
	TfMin  int
	Limit  int
	Order  domrepo.Order
}

// CandlesRangeQuery is a validated time-range descriptor. Start and End are
// inclusive on both ends.
type CandlesRangeQuery struct {
	Ticker string
	TfMin  int
	Start  time.Time
	End    time.Time
	Limit  int
}

// ReplayParams is a validated replay-session descriptor.
type ReplayParams struct {
	Ticker      string
	TfMin       int
	StepSeconds int
	Step        time.Duration
}

// The Build* functions turn bound request structs into typed descriptors,
// failing with fault.InvalidArgument on the first violated constraint. They
// are pure and deterministic; a nil numeric field means the parameter was
// omitted and takes its configured default.

func BuildSymbolsQuery(req *models.SymbolsRequest, limits LimitPolicy) (SymbolsQuery, error) {
	limit, err := checkLimit(req.Limit, limits.SymbolsDefault, limits.Max)
	if err != nil {
		return SymbolsQuery{}, err
	}
	return SymbolsQuery{Limit: limit, Prefix: strings.TrimSpace(req.Prefix)}, nil
}

func BuildCandlesQuery(req *models.CandlesRequest, limits LimitPolicy) (CandlesQuery, error) {
	ticker, err := checkTicker(req.Ticker)
	if err != nil {
		return CandlesQuery{}, err
	}
	tfMin, err := checkTfMin(req.TfMin, limits.DefaultTfMin)
	if err != nil {
		return CandlesQuery{}, err
	}
	limit, err := checkLimit(req.Limit, limits.CandlesDefault, limits.Max)
	if err != nil {
		return CandlesQuery{}, err
	}
	order, ok := domrepo.ParseOrder(req.Order)
	if !ok {
		return CandlesQuery{}, fault.InvalidArgument("invalid order parameter: %s, must be 'asc' or 'desc'", req.Order)
	}
	return CandlesQuery{Ticker: ticker, TfMin: tfMin, Limit: limit, Order: order}, nil
}

func BuildCandlesRangeQuery(req *models.CandlesRangeRequest, limits LimitPolicy) (CandlesRangeQuery, error) {
	ticker, err := checkTicker(req.Ticker)
	if err != nil {
		return CandlesRangeQuery{}, err
	}
	tfMin, err := checkTfMin(req.TfMin, limits.DefaultTfMin)
	if err != nil {
		return CandlesRangeQuery{}, err
	}
	limit, err := checkLimit(req.Limit, limits.Max, limits.Max)
	if err != nil {
		return CandlesRangeQuery{}, err
	}
	start, ok := util.ParseTime(req.Start)
	if !ok {
		return CandlesRangeQuery{}, fault.InvalidArgument("invalid start datetime format: %s, use ISO format", req.Start)
	}
	end, ok := util.ParseTime(req.End)
	if !ok {
		return CandlesRangeQuery{}, fault.InvalidArgument("invalid end datetime format: %s, use ISO format", req.End)
	}
	if start.After(end) {
		return CandlesRangeQuery{}, fault.InvalidArgument("start datetime must be before or equal to end datetime")
	}
	return CandlesRangeQuery{Ticker: ticker, TfMin: tfMin, Start: start, End: end, Limit: limit}, nil
}

func BuildCandleMetaQuery(req *models.CandleMetaRequest, limits LimitPolicy) (string, int, error) {
	ticker, err := checkTicker(req.Ticker)
	if err != nil {
		return "", 0, err
	}
	tfMin, err := checkTfMin(req.TfMin, limits.DefaultTfMin)
	if err != nil {
		return "", 0, err
	}
	return ticker, tfMin, nil
}

func BuildReplayParams(req *models.ReplayRequest, limits LimitPolicy, steps StepPolicy) (ReplayParams, error) {
	ticker, err := checkTicker(req.Ticker)
	if err != nil {
		return ReplayParams{}, err
	}
	tfMin, err := checkTfMin(req.TfMin, limits.DefaultTfMin)
	if err != nil {
		return ReplayParams{}, err
	}
	step := steps.Default
	if req.StepSeconds != nil {
		step = *req.StepSeconds
	}
	if step < steps.Min || step > steps.Max {
		return ReplayParams{}, fault.InvalidArgument("invalid step_seconds parameter: %d, must be between %d and %d", step, steps.Min, steps.Max)
	}
	return ReplayParams{
		Ticker:      ticker,
		TfMin:       tfMin,
		StepSeconds: step,
		Step:        time.Duration(step) * time.Second,
	}, nil
}

func checkTicker(raw string) (string, error) {
	ticker := strings.TrimSpace(raw)
	if ticker == "" {
		return "", fault.InvalidArgument("invalid ticker parameter: must be a non-empty string")
	}
	return ticker, nil
}

func checkTfMin(raw *int, def int) (int, error) {
	tfMin := def
	if raw != nil {
		tfMin = *raw
	}
	if tfMin < 1 {
		return 0, fault.InvalidArgument("invalid tf_min parameter: %d, must be a positive integer", tfMin)
	}
	return tfMin, nil
}

func checkLimit(raw *int, def, max int) (int, error) {
	limit := def
	if raw != nil {
		limit = *raw
	}
	if limit < 1 || limit > max {
		return 0, fault.InvalidArgument("invalid limit parameter: %d, must be between 1 and %d", limit, max)
	}
	return limit, nil
}
