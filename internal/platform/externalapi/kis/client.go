package kis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"chart_backend/internal/platform/externalapi/kis/dto"
	"chart_backend/internal/shared/apperr"
	"chart_backend/internal/shared/ratelimiter"
)

// TokenProvider は呼び出しごとに有効なアクセストークンを返します。
type TokenProvider interface {
	GetAccessToken(ctx context.Context) (string, error)
}

// Client はKIS Open APIへのHTTP呼び出しを共通化します。
// ネットワークエラーのみ固定間隔でリトライし、HTTPエラーや業務エラーはリトライしません。
type Client struct {
	cfg     Config
	http    *http.Client
	limiter ratelimiter.RateLimiterInterface
}

// NewClient は指定された設定でClientを生成します。limiter が nil の場合は待機しません。
func NewClient(cfg Config, httpClient *http.Client, limiter ratelimiter.RateLimiterInterface) *Client {
	if limiter == nil {
		limiter = ratelimiter.Noop{}
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	return &Client{cfg: cfg, http: httpClient, limiter: limiter}
}

// backoff は1回の呼び出しで使うリトライ戦略を返します。
func (c *Client) backoff() retry.Backoff {
	return retry.WithMaxRetries(c.cfg.MaxRetries, retry.NewConstant(c.cfg.RetryDelay))
}

// quotation は認証ヘッダー付きのGETリクエストを送り、レスポンスを out にデコードします。
func (c *Client) quotation(ctx context.Context, token, path, trID string, q url.Values, out any) error {
	u := fmt.Sprintf("%s%s?%s", strings.TrimRight(c.cfg.BaseURL, "/"), path, q.Encode())
	return c.do(ctx, path, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("appkey", c.cfg.AppKey)
		req.Header.Set("appsecret", c.cfg.AppSecret)
		req.Header.Set("tr_id", trID)
		req.Header.Set("custtype", "P")
		return req, nil
	}, out)
}

// postJSON は body をJSONで送信し、レスポンスを out にデコードします。
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	u := strings.TrimRight(c.cfg.BaseURL, "/") + path
	return c.do(ctx, path, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		return req, nil
	}, out)
}

// do はレート制限とリトライを適用してリクエストを実行します。
func (c *Client) do(ctx context.Context, path string, build func(ctx context.Context) (*http.Request, error), out any) error {
	var body []byte
	attempt := 0
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		req, err := build(ctx)
		if err != nil {
			return err
		}

		res, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("kis request failed", "path", path, "attempt", attempt, "error", err)
			return retry.RetryableError(fmt.Errorf("%w: %v", apperr.ErrUpstreamRequest, err))
		}
		defer func() {
			if err := res.Body.Close(); err != nil {
				slog.Warn("failed to close response body", "error", err)
			}
		}()

		b, err := io.ReadAll(res.Body)
		if err != nil {
			slog.Warn("kis response read failed", "path", path, "attempt", attempt, "error", err)
			return retry.RetryableError(fmt.Errorf("%w: %v", apperr.ErrUpstreamRequest, err))
		}
		if res.StatusCode >= 400 {
			return fmt.Errorf("%w: kis http %d: %s", apperr.ErrUpstreamRequest, res.StatusCode, truncate(b, 200))
		}
		body = b
		return nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", apperr.ErrParse, path, err)
	}
	return nil
}

// checkEnvelope は業務エラー（rt_cd != "0"）をエラーに変換します。
func checkEnvelope(e dto.Envelope) error {
	if e.OK() {
		return nil
	}
	return fmt.Errorf("%w: kis rt_cd=%s msg_cd=%s: %s", apperr.ErrUpstreamRequest, e.RtCd, e.MsgCd, e.Msg1)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// parseInt は数値文字列を int64 に変換します。空文字や不正な値は0になります。
func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// "123.0" のような小数表記も受け付ける
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0
		}
		return int64(f)
	}
	return n
}

// parseFloat は数値文字列を float64 に変換します。不正な値は0になります。
func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

