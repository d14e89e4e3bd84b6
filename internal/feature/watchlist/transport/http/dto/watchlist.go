package dto

// AddRequest は関心銘柄追加のリクエストDTOです。
type AddRequest struct {
	Code string `json:"code" binding:"required,max=16"`
	Name string `json:"name" binding:"max=100"`
}

// WatchlistItem は関心銘柄1件のレスポンスDTOです。
type WatchlistItem struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Price  int64   `json:"price"`  // 保存済み最新終値
	Change float64 `json:"change"` // 前日比（%）
}

// CheckResponse は登録有無のレスポンスDTOです。
type CheckResponse struct {
	Code    string `json:"code"`
	Watched bool   `json:"watched"`
}
