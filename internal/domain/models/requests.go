package models

// Requests for the REST and WS endpoints. Defined in domain for consistency and
// reuse; bound from query strings, defaulted, and constraint-checked by pkg/http.
// Bounded numeric fields are pointers so an explicit out-of-range zero is
// rejected instead of silently replaced by the default.

type SymbolsRequest struct {
	Limit  *int   `query:"limit" json:"limit" default:"100" validate:"required,gte=1,lte=5000"`
	Prefix string `query:"prefix" json:"prefix"`
}

type CandlesRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required"`
	TfMin  *int   `query:"tf_min" json:"tf_min" default:"5" validate:"required,gte=1"`
	Limit  *int   `query:"limit" json:"limit" default:"200" validate:"required,gte=1,lte=5000"`
	Order  string `query:"order" json:"order" default:"asc" validate:"oneof=asc desc"`
}

type CandlesRangeRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required"`
	TfMin  *int   `query:"tf_min" json:"tf_min" default:"5" validate:"required,gte=1"`
	Start  string `query:"start" json:"start" validate:"required"`
	End    string `query:"end" json:"end" validate:"required"`
	Limit  *int   `query:"limit" json:"limit" default:"5000" validate:"required,gte=1,lte=5000"`
}

type CandleMetaRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required"`
	TfMin  *int   `query:"tf_min" json:"tf_min" default:"5" validate:"required,gte=1"`
}

type ReplayRequest struct {
	Ticker      string `query:"ticker" json:"ticker" validate:"required"`
	TfMin       *int   `query:"tf_min" json:"tf_min" default:"5" validate:"required,gte=1"`
	StepSeconds *int   `query:"step_seconds" json:"step_seconds" default:"15" validate:"required,gte=1,lte=60"`
}
