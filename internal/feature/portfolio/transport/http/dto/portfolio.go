package dto

// AddRequest は保有銘柄追加のリクエストDTOです。
type AddRequest struct {
	Code     string `json:"code" binding:"required,max=16"`
	Name     string `json:"name" binding:"max=100"`
	Price    int64  `json:"price" binding:"required,gt=0"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

// HoldingItem は評価済み保有銘柄1件のレスポンスDTOです。
type HoldingItem struct {
	ID            uint    `json:"id"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	AveragePrice  int64   `json:"averagePrice"`
	Quantity      int64   `json:"quantity"`
	TotalInvested int64   `json:"totalInvested"`
	CurrentPrice  int64   `json:"currentPrice"`
	Priced        bool    `json:"priced"` // false なら現在値を取得できず平均取得単価で評価
	TotalValue    int64   `json:"totalValue"`
	Profit        int64   `json:"profit"`
	ProfitRate    float64 `json:"profitRate"`
}

// PortfolioResponse は保有銘柄一覧と合計です。
type PortfolioResponse struct {
	Items         []HoldingItem `json:"items"`
	TotalInvested int64         `json:"totalInvested"`
	TotalValue    int64         `json:"totalValue"`
	Profit        int64         `json:"profit"`
	ProfitRate    float64       `json:"profitRate"`
}
