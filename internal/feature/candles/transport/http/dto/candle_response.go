package dto

// CandleResponse はロウソク足データのレスポンスDTOです。
// 移動平均は十分な履歴がない場合 null になります。
type CandleResponse struct {
	Time   string `json:"time"`   // 日付 (YYYY-MM-DD)
	Open   int64  `json:"open"`   // 始値
	High   int64  `json:"high"`   // 高値
	Low    int64  `json:"low"`    // 安値
	Close  int64  `json:"close"`  // 終値
	Volume int64  `json:"volume"` // 出来高
	MA5    *int64 `json:"ma5"`
	MA20   *int64 `json:"ma20"`
	MA60   *int64 `json:"ma60"`
}
