// Package usecase はプロバイダーのアクセストークンのライフサイクルを管理します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"chart_backend/internal/feature/token/domain/entity"
	"chart_backend/internal/shared/apperr"
)

// DefaultSafetyMargin はプロバイダーの実際の有効期限より手前に設定する余裕時間です。
const DefaultSafetyMargin = 5 * time.Minute

// refreshTimeout は共有される発行処理1回あたりの上限です。
const refreshTimeout = 30 * time.Second

// TokenStore はキャッシュされたトークン1件を永続化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type TokenStore interface {
	// Get はキャッシュ済みトークンを返します。存在しない場合は apperr.ErrNotFound を返します。
	Get(ctx context.Context) (*entity.CachedToken, error)
	// Put はトークンを insert-or-update します。
	Put(ctx context.Context, token *entity.CachedToken) error
}

// TokenIssuer はプロバイダーのトークン発行エンドポイントを抽象化します。
type TokenIssuer interface {
	IssueToken(ctx context.Context) (entity.IssuedToken, error)
}

// TokenCache はトークンを再利用し、期限切れまたは未発行の場合のみ新規発行します。
type TokenCache struct {
	store  TokenStore
	issuer TokenIssuer
	margin time.Duration
	now    func() time.Time
	group  singleflight.Group
}

// NewTokenCache は TokenCache を生成します。margin が0以下の場合は DefaultSafetyMargin を使います。
func NewTokenCache(store TokenStore, issuer TokenIssuer, margin time.Duration) *TokenCache {
	if margin <= 0 {
		margin = DefaultSafetyMargin
	}
	return &TokenCache{store: store, issuer: issuer, margin: margin, now: time.Now}
}

// GetAccessToken は有効なアクセストークンを返します。
// キャッシュが有効ならネットワーク呼び出しは行いません。
// 同時に期限切れを検知した呼び出しは1回の発行結果を共有します。
func (tc *TokenCache) GetAccessToken(ctx context.Context) (string, error) {
	cached, err := tc.store.Get(ctx)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		// ストアが読めない場合も発行を試みる
		slog.Warn("token store read failed, issuing new token", "error", err)
	}
	if err == nil && cached.IsValid(tc.now()) {
		return cached.Value, nil
	}

	// 発行は呼び出し元のキャンセルから切り離し、各呼び出しは自分の ctx でのみ待機を打ち切る
	ch := tc.group.DoChan("access-token", func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return tc.refresh(flightCtx)
	})
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", apperr.ErrUpstreamAuth, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// refresh は新しいトークンを発行して保存します。
func (tc *TokenCache) refresh(ctx context.Context) (string, error) {
	issued, err := tc.issuer.IssueToken(ctx)
	if err != nil {
		slog.Error("token issuance failed", "error", err)
		if errors.Is(err, apperr.ErrUpstreamAuth) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", apperr.ErrUpstreamAuth, err)
	}
	if issued.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", apperr.ErrUpstreamAuth)
	}

	token := &entity.CachedToken{
		Value:     issued.AccessToken,
		ExpiresAt: tc.now().Add(time.Duration(issued.ExpiresInSeconds)*time.Second - tc.margin),
	}
	if err := tc.store.Put(ctx, token); err != nil {
		// 保存に失敗しても発行済みトークンは使える
		slog.Warn("failed to persist access token", "error", err)
	}
	slog.Info("access token issued", "expires_at", token.ExpiresAt)
	return token.Value, nil
}
