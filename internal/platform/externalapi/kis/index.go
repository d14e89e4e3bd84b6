package kis

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"chart_backend/internal/feature/market/domain/entity"
	"chart_backend/internal/feature/market/usecase"
	"chart_backend/internal/platform/externalapi/kis/dto"
	"chart_backend/internal/shared/apperr"
)

const (
	indexPath = "/uapi/domestic-stock/v1/quotations/inquire-index-price"
	// trIndex は場中は実時間、引け後は終値の指数を返します。
	trIndex = "FHPUP02100000"
)

// IndexSource はKIS APIから業種指数を取得します。
type IndexSource struct {
	client *Client
	tokens TokenProvider
}

var _ usecase.IndexSource = (*IndexSource)(nil)

// NewIndexSource は IndexSource を生成します。
func NewIndexSource(client *Client, tokens TokenProvider) *IndexSource {
	return &IndexSource{client: client, tokens: tokens}
}

// FetchIndex は code の現在指数を返します。
func (s *IndexSource) FetchIndex(ctx context.Context, code entity.IndexCode) (entity.IndexInfo, error) {
	token, err := s.tokens.GetAccessToken(ctx)
	if err != nil {
		return entity.IndexInfo{}, err
	}

	q := url.Values{}
	q.Set("FID_COND_MRKT_DIV_CODE", "U")
	q.Set("FID_INPUT_ISCD", string(code))

	var body dto.IndexResponse
	if err := s.client.quotation(ctx, token, indexPath, trIndex, q, &body); err != nil {
		return entity.IndexInfo{}, err
	}
	if err := checkEnvelope(body.Envelope); err != nil {
		return entity.IndexInfo{}, err
	}
	if body.Output == nil || strings.TrimSpace(body.Output.Price) == "" {
		return entity.IndexInfo{}, fmt.Errorf("%w: empty index output for %s", apperr.ErrParse, code)
	}

	return entity.IndexInfo{
		Price:  strings.TrimSpace(body.Output.Price),
		Sign:   strings.TrimSpace(body.Output.Sign),
		Change: strings.TrimSpace(body.Output.Change),
		Rate:   strings.TrimSpace(body.Output.Rate),
	}, nil
}
