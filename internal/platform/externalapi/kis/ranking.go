package kis

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"chart_backend/internal/feature/ranking/domain/entity"
	"chart_backend/internal/feature/ranking/usecase"
	"chart_backend/internal/platform/externalapi/kis/dto"
	"chart_backend/internal/shared/apperr"
)

const (
	fluctuationPath = "/uapi/domestic-stock/v1/ranking/fluctuation"
	trFluctuation   = "FHPST01700000"
	quotePath       = "/uapi/domestic-stock/v1/quotations/inquire-price"
	trQuote         = "FHKST01010100"
)

// RankingSource はKIS APIから騰落率ランキングと現在値を取得します。
type RankingSource struct {
	client *Client
	tokens TokenProvider
}

var _ usecase.RankingSource = (*RankingSource)(nil)

// NewRankingSource は RankingSource を生成します。
func NewRankingSource(client *Client, tokens TokenProvider) *RankingSource {
	return &RankingSource{client: client, tokens: tokens}
}

// FetchRanking は指定方向の騰落率ランキングを返します。
func (r *RankingSource) FetchRanking(ctx context.Context, dir entity.Direction) ([]entity.RankingEntry, error) {
	token, err := r.tokens.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	sortCode := "0"
	if dir == entity.DirectionFalling {
		sortCode = "1"
	}
	q := url.Values{}
	q.Set("FID_COND_MRKT_DIV_CODE", "J")
	q.Set("FID_COND_SCR_DIV_CODE", "20170")
	q.Set("FID_INPUT_ISCD", "0000")
	q.Set("FID_RANK_SORT_CLS_CODE", sortCode)
	q.Set("FID_INPUT_CNT_1", "1")
	q.Set("FID_PRC_CLS_CODE", "1")
	q.Set("FID_INPUT_PRICE_1", "0")
	q.Set("FID_INPUT_PRICE_2", "0")
	q.Set("FID_VOL_CNT", "0")
	q.Set("FID_TRGT_CLS_CODE", "0")
	q.Set("FID_TRGT_EXLS_CLS_CODE", "0")
	q.Set("FID_DIV_CLS_CODE", "0")
	q.Set("FID_RSFL_RATE1", "0")
	q.Set("FID_RSFL_RATE2", "0")

	var body dto.FluctuationResponse
	if err := r.client.quotation(ctx, token, fluctuationPath, trFluctuation, q, &body); err != nil {
		return nil, err
	}
	if err := checkEnvelope(body.Envelope); err != nil {
		return nil, err
	}

	entries := make([]entity.RankingEntry, 0, len(body.Output))
	for i, row := range body.Output {
		rank, err := strconv.Atoi(strings.TrimSpace(row.Rank))
		if err != nil || rank <= 0 {
			rank = i + 1
		}
		entries = append(entries, entity.RankingEntry{
			Rank:         rank,
			Symbol:       strings.TrimSpace(row.Symbol),
			Name:         strings.TrimSpace(row.Name),
			Price:        parseInt(row.Price),
			ChangeAmount: parseInt(row.ChangeAmount),
			ChangeRate:   parseFloat(row.ChangeRate),
			Direction:    dir,
		})
	}
	return entries, nil
}

// FetchQuote は1銘柄の現在値を返します。
func (r *RankingSource) FetchQuote(ctx context.Context, symbol string) (entity.Quote, error) {
	token, err := r.tokens.GetAccessToken(ctx)
	if err != nil {
		return entity.Quote{}, err
	}

	q := url.Values{}
	q.Set("FID_COND_MRKT_DIV_CODE", "J")
	q.Set("FID_INPUT_ISCD", symbol)

	var body dto.QuoteResponse
	if err := r.client.quotation(ctx, token, quotePath, trQuote, q, &body); err != nil {
		return entity.Quote{}, err
	}
	if err := checkEnvelope(body.Envelope); err != nil {
		return entity.Quote{}, err
	}
	if body.Output == nil {
		return entity.Quote{}, fmt.Errorf("%w: empty quote for %s", apperr.ErrParse, symbol)
	}

	code := strings.TrimSpace(body.Output.Symbol)
	if code == "" {
		code = symbol
	}
	return entity.Quote{
		Symbol:       code,
		Name:         strings.TrimSpace(body.Output.Name),
		Price:        parseInt(body.Output.Price),
		ChangeAmount: parseInt(body.Output.ChangeAmount),
		ChangeRate:   parseFloat(body.Output.ChangeRate),
	}, nil
}
