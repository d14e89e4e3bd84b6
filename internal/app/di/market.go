// Package di provides dependency injection factories for creating application components.
package di

import (
	marketusecase "chart_backend/internal/feature/market/usecase"
	tokenusecase "chart_backend/internal/feature/token/usecase"
	"chart_backend/internal/platform/externalapi/exchangerate"
	"chart_backend/internal/platform/externalapi/kis"
	infrahttp "chart_backend/internal/platform/http"
	"chart_backend/internal/shared/envconfig"
	"chart_backend/internal/shared/ratelimiter"
)

// KIS bundles the upstream adapters that share one HTTP client, rate limiter
// and access token cache.
type KIS struct {
	Market  *kis.Market
	Ranking *kis.RankingSource
	Index   *kis.IndexSource
	Master  *kis.MasterSource
	Tokens  *tokenusecase.TokenCache
}

// NewKIS creates the KIS adapters from environment configuration.
func NewKIS(store tokenusecase.TokenStore) *KIS {
	cfg := kis.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	client := kis.NewClient(cfg, httpClient, ratelimiter.NewPerSecond(cfg.RequestsPerSecond))

	margin := envconfig.Duration("TOKEN_SAFETY_MARGIN", tokenusecase.DefaultSafetyMargin)
	tokens := tokenusecase.NewTokenCache(store, kis.NewAuthClient(client), margin)

	return &KIS{
		Market:  kis.NewMarket(client, tokens),
		Ranking: kis.NewRankingSource(client, tokens),
		Index:   kis.NewIndexSource(client, tokens),
		Master:  kis.NewMasterSource(infrahttp.NewHTTPClient(envconfig.Duration("KIS_MASTER_TIMEOUT", defaultMasterTimeout)), cfg, nil),
		Tokens:  tokens,
	}
}

// NewRateSources returns the USD/KRW sources in the order they are tried.
func NewRateSources() []marketusecase.RateSource {
	cfg := exchangerate.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return []marketusecase.RateSource{
		exchangerate.NewNaverSource(httpClient, cfg.NaverURL),
		exchangerate.NewOpenERSource(httpClient, cfg.OpenERURL),
	}
}
