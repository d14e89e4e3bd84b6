// Package exchangerate fetches the USD/KRW rate from public quote endpoints.
package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chart_backend/internal/feature/market/usecase"
	"chart_backend/internal/shared/apperr"
	"chart_backend/internal/shared/envconfig"
)

const (
	DefaultNaverURL  = "https://m.search.naver.com/p/csearch/content/qapirender.nhn?key=calculator&pkid=141&q=%ED%99%98%EC%9C%A8&where=m&u1=keb&u6=standardUnit&u7=0&u3=USD&u4=KRW&u8=down&u2=1"
	DefaultOpenERURL = "https://open.er-api.com/v6/latest/USD"

	// Naver rejects requests without a browser user agent.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config holds the rate endpoints and the per-request timeout.
type Config struct {
	NaverURL  string
	OpenERURL string
	Timeout   time.Duration
}

// LoadConfig loads exchange rate configuration from environment variables.
func LoadConfig() Config {
	return Config{
		NaverURL:  envconfig.String("FX_PRIMARY_URL", DefaultNaverURL),
		OpenERURL: envconfig.String("FX_FALLBACK_URL", DefaultOpenERURL),
		Timeout:   envconfig.Duration("FX_TIMEOUT", 3*time.Second),
	}
}

// NaverSource reads the rate from Naver's calculator widget.
type NaverSource struct {
	http *http.Client
	url  string
}

var _ usecase.RateSource = (*NaverSource)(nil)

func NewNaverSource(httpClient *http.Client, url string) *NaverSource {
	return &NaverSource{http: httpClient, url: url}
}

type naverResponse struct {
	Country []struct {
		Value string `json:"value"` // "1,395.50"
	} `json:"country"`
}

// FetchUSDKRW returns the KRW value of one dollar. The second country entry holds KRW.
func (s *NaverSource) FetchUSDKRW(ctx context.Context) (float64, error) {
	var body naverResponse
	if err := getJSON(ctx, s.http, s.url, browserUserAgent, &body); err != nil {
		return 0, err
	}
	if len(body.Country) < 2 {
		return 0, fmt.Errorf("%w: naver response has %d country entries", apperr.ErrParse, len(body.Country))
	}
	raw := strings.ReplaceAll(strings.TrimSpace(body.Country[1].Value), ",", "")
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: naver rate %q", apperr.ErrParse, body.Country[1].Value)
	}
	return rate, nil
}

// OpenERSource reads the rate from open.er-api.com.
type OpenERSource struct {
	http *http.Client
	url  string
}

var _ usecase.RateSource = (*OpenERSource)(nil)

func NewOpenERSource(httpClient *http.Client, url string) *OpenERSource {
	return &OpenERSource{http: httpClient, url: url}
}

type openERResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// FetchUSDKRW returns rates.KRW of the USD table.
func (s *OpenERSource) FetchUSDKRW(ctx context.Context) (float64, error) {
	var body openERResponse
	if err := getJSON(ctx, s.http, s.url, "", &body); err != nil {
		return 0, err
	}
	rate, ok := body.Rates["KRW"]
	if !ok {
		return 0, fmt.Errorf("%w: open.er-api response has no KRW rate (result=%s)", apperr.ErrParse, body.Result)
	}
	return rate, nil
}

func getJSON(ctx context.Context, client *http.Client, url, userAgent string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrUpstreamRequest, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: http %d from %s", apperr.ErrUpstreamRequest, res.StatusCode, req.URL.Host)
	}
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrUpstreamRequest, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", apperr.ErrParse, req.URL.Host, err)
	}
	return nil
}
