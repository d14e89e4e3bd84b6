package kis

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"chart_backend/internal/feature/candles/domain/entity"
	"chart_backend/internal/feature/candles/usecase"
	"chart_backend/internal/platform/externalapi/kis/dto"
	"chart_backend/internal/shared/datefmt"
)

const (
	dailyPricePath = "/uapi/domestic-stock/v1/quotations/inquire-daily-itemchartprice"
	trDailyPrice   = "FHKST03010100"
)

// Market はKIS APIから日足データを取得するPriceSource実装です。
type Market struct {
	client *Client
	tokens TokenProvider
}

// MarketがPriceSourceを実装していることをコンパイル時に検証します。
var _ usecase.PriceSource = (*Market)(nil)

// NewMarket は Market を生成します。
func NewMarket(client *Client, tokens TokenProvider) *Market {
	return &Market{client: client, tokens: tokens}
}

// GetDailyPrices は [start, end]（YYYYMMDD）の日足を返します。
// 日付が空または不正な行は捨て、数値が不正な項目は0として扱います。
func (m *Market) GetDailyPrices(ctx context.Context, symbol, start, end string) ([]entity.Candle, error) {
	token, err := m.tokens.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("FID_COND_MRKT_DIV_CODE", "J")
	q.Set("FID_INPUT_ISCD", symbol)
	q.Set("FID_INPUT_DATE_1", start)
	q.Set("FID_INPUT_DATE_2", end)
	q.Set("FID_PERIOD_DIV_CODE", "D")
	q.Set("FID_ORG_ADJ_PRC", "1")

	var body dto.DailyPriceResponse
	if err := m.client.quotation(ctx, token, dailyPricePath, trDailyPrice, q, &body); err != nil {
		return nil, err
	}
	if err := checkEnvelope(body.Envelope); err != nil {
		return nil, err
	}

	candles := make([]entity.Candle, 0, len(body.Output2))
	for _, row := range body.Output2 {
		date := strings.TrimSpace(row.Date)
		if date == "" {
			continue
		}
		if _, err := datefmt.Parse(date); err != nil {
			slog.Warn("dropping row with malformed date", "symbol", symbol, "date", date)
			continue
		}
		vol := row.Volume
		if strings.TrimSpace(vol) == "" {
			vol = row.TradedQty
		}
		candles = append(candles, entity.Candle{
			Symbol: symbol,
			Date:   date,
			Open:   parseInt(row.Open),
			High:   parseInt(row.High),
			Low:    parseInt(row.Low),
			Close:  parseInt(row.Close),
			Volume: parseInt(vol),
		})
	}
	return candles, nil
}
