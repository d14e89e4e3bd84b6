package dto

// IndexItem は指数1件のレスポンスDTOです。値は提供元の表記のまま返します。
type IndexItem struct {
	Price  string `json:"price"`
	Sign   string `json:"sign"` // 1:上限 2:上昇 3:保合 4:下限 5:下落
	Change string `json:"change"`
	Rate   string `json:"rate"`
}

// ExchangeRateResponse はUSD/KRW相場のレスポンスDTOです。
type ExchangeRateResponse struct {
	Base  string  `json:"base"`
	Quote string  `json:"quote"`
	Rate  float64 `json:"rate"`
}
