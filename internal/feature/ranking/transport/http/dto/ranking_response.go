package dto

// RankingItem は騰落率ランキング1行のレスポンスDTOです。
type RankingItem struct {
	Rank         int     `json:"rank"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Price        int64   `json:"price"`
	ChangeAmount int64   `json:"changeAmount"`
	ChangeRate   float64 `json:"changeRate"`
	AsOf         string  `json:"asOf"` // RFC3339
}
