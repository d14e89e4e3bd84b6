package dto

// AssetRequest は資産1件の入力です。比重は合計100である必要はありません。
type AssetRequest struct {
	Code   string  `json:"code" binding:"required"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight" binding:"gt=0"`
}

// BacktestRequest は資産配分バックテストのリクエストDTOです。
type BacktestRequest struct {
	SeedMoney     int64          `json:"seedMoney" binding:"required,gt=0"`
	PeriodMonths  int            `json:"periodMonths" binding:"required,gt=0,lte=240"`
	Assets        []AssetRequest `json:"assets" binding:"required,min=1,max=20,dive"`
	BenchmarkCode string         `json:"benchmarkCode"`
}

// ChartPoint は資産推移の1点です。
type ChartPoint struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

// ResultResponse は1回のシミュレーション結果です。
type ResultResponse struct {
	FinalBalance int64        `json:"finalBalance"`
	TotalReturn  float64      `json:"totalReturn"`
	CAGR         float64      `json:"cagr"`
	MDD          float64      `json:"mdd"`
	Volatility   float64      `json:"volatility"`
	SharpeRatio  float64      `json:"sharpeRatio"`
	EquityCurve  []ChartPoint `json:"equityCurve"`
}

// BacktestResponse はポートフォリオとベンチマークの結果です。
type BacktestResponse struct {
	Portfolio ResultResponse  `json:"portfolio"`
	Benchmark *ResultResponse `json:"benchmark,omitempty"`
}

// HistoryItem はバックテスト履歴1件です。
type HistoryItem struct {
	ID            uint    `json:"id"`
	Date          string  `json:"date"` // YYYY-MM-DD HH:MM
	AssetsSummary string  `json:"assetsSummary"`
	AssetsJSON    string  `json:"assetsJson"`
	SeedMoney     int64   `json:"seedMoney"`
	PeriodMonths  int     `json:"periodMonths"`
	TotalReturn   float64 `json:"totalReturn"`
	FinalBalance  int64   `json:"finalBalance"`
}
