package dto

// FluctuationResponse represents ranking/fluctuation.
type FluctuationResponse struct {
	Envelope
	Output []FluctuationRow `json:"output"`
}

// FluctuationRow is one ranked symbol.
type FluctuationRow struct {
	Rank         string `json:"data_rank"`
	Symbol       string `json:"stck_shrn_iscd"`
	Name         string `json:"hts_kor_isnm"`
	Price        string `json:"stck_prpr"`
	ChangeAmount string `json:"prdy_vrss"`
	ChangeRate   string `json:"prdy_ctrt"`
}

// QuoteResponse represents inquire-price.
type QuoteResponse struct {
	Envelope
	Output *QuoteOutput `json:"output"`
}

// QuoteOutput is the current price block of inquire-price.
type QuoteOutput struct {
	Symbol       string `json:"stck_shrn_iscd"`
	Name         string `json:"hts_kor_isnm"`
	Price        string `json:"stck_prpr"`
	ChangeAmount string `json:"prdy_vrss"`
	ChangeRate   string `json:"prdy_ctrt"`
}
