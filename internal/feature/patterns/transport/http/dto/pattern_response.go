package dto

// PatternItem は検出パターン1件のレスポンスDTOです。
type PatternItem struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Trend       string `json:"trend"`
	Reliability int    `json:"reliability"`
	Date        string `json:"date"` // YYYY-MM-DD
}
