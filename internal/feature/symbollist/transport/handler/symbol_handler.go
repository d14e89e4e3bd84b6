package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chart_backend/internal/feature/symbollist/domain/entity"
	"chart_backend/internal/feature/symbollist/transport/http/dto"
	"chart_backend/internal/shared/apperr"
)

// SymbolUsecase は銘柄情報に関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type SymbolUsecase interface {
	ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error)
	Search(ctx context.Context, query string, limit int) ([]entity.Symbol, error)
}

// SymbolHandler は銘柄情報に関するHTTPリクエストを処理します。
type SymbolHandler struct {
	uc SymbolUsecase
}

// NewSymbolHandler は新しい SymbolHandler を作成します。
func NewSymbolHandler(uc SymbolUsecase) *SymbolHandler {
	return &SymbolHandler{uc: uc}
}

// List は有効な銘柄の一覧を返します。q が指定された場合はコード・銘柄名で検索します。
//
// エンドポイント例:
// GET /symbols
// GET /symbols?q=삼성&limit=10
func (h *SymbolHandler) List(c *gin.Context) {
	var (
		symbols []entity.Symbol
		err     error
	)
	if q, ok := c.GetQuery("q"); ok {
		limit, _ := strconv.Atoi(c.Query("limit"))
		symbols, err = h.uc.Search(c.Request.Context(), q, limit)
	} else {
		symbols, err = h.uc.ListActiveSymbols(c.Request.Context())
	}
	if err != nil {
		status := http.StatusInternalServerError
		if s := apperr.HTTPStatus(err); s == http.StatusBadRequest {
			status = s
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.SymbolItem, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, dto.SymbolItem{Code: s.Code, Name: s.Name, Market: s.Market})
	}
	c.JSON(http.StatusOK, out)
}
