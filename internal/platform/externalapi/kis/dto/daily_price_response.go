package dto

// DailyPriceResponse represents inquire-daily-itemchartprice.
type DailyPriceResponse struct {
	Envelope
	Output2 []DailyPriceRow `json:"output2"`
}

// DailyPriceRow is one trading day. All numbers arrive as strings.
type DailyPriceRow struct {
	Date      string `json:"stck_bsop_date"`
	Open      string `json:"stck_oprc"`
	High      string `json:"stck_hgpr"`
	Low       string `json:"stck_lwpr"`
	Close     string `json:"stck_clpr"`
	Volume    string `json:"acml_vol"`
	TradedQty string `json:"acc_trd_qty"`
}
