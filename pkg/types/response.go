package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// VendorRanking is the JSON shape of one ranked vendor. Rates that are not
// numbers are encoded as null.
type VendorRanking struct {
	Rank          int      `json:"rank"`
	VendorCode    string   `json:"vendor_code"`
	VendorName    string   `json:"vendor_name"`
	OnTime        int      `json:"on_time"`
	Late          int      `json:"late"`
	Total         int      `json:"total"`
	Confidence    float64  `json:"confidence_mean"`
	ValueTotal    string   `json:"value_total"`
	ValueLate     string   `json:"value_late"`
	LoadReference *float64 `json:"load_reference"`
	LoadDisplay   int      `json:"load_display"`
	RateOnTime    *float64 `json:"rate_on_time"`
	RateValue     *float64 `json:"rate_value"`
	RateLoad      *float64 `json:"rate_load"`
	RawIndex      *float64 `json:"raw_index"`
	RiskIndex     *float64 `json:"risk_index"`
}

// RankingResponse wraps a ranking run with its row-level warning counters.
type RankingResponse struct {
	RunID             string          `json:"run_id"`
	GeneratedAt       string          `json:"generated_at"`
	Orders            int             `json:"orders"`
	DateParseFailures int             `json:"date_parse_failures"`
	MissingReference  int             `json:"missing_reference"`
	Vendors           []VendorRanking `json:"vendors"`
}
