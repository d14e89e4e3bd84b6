package kis

import (
	"context"
	"fmt"

	"chart_backend/internal/feature/token/domain/entity"
	"chart_backend/internal/feature/token/usecase"
	"chart_backend/internal/platform/externalapi/kis/dto"
	"chart_backend/internal/shared/apperr"
)

const tokenPath = "/oauth2/tokenP"

// AuthClient はアクセストークン発行エンドポイントを呼び出します。
type AuthClient struct {
	client *Client
}

var _ usecase.TokenIssuer = (*AuthClient)(nil)

// NewAuthClient は AuthClient を生成します。
func NewAuthClient(client *Client) *AuthClient {
	return &AuthClient{client: client}
}

// IssueToken はアプリケーションキーとシークレットで新しいトークンを発行します。
func (a *AuthClient) IssueToken(ctx context.Context) (entity.IssuedToken, error) {
	req := dto.TokenRequest{
		GrantType: "client_credentials",
		AppKey:    a.client.cfg.AppKey,
		AppSecret: a.client.cfg.AppSecret,
	}
	var res dto.TokenResponse
	if err := a.client.postJSON(ctx, tokenPath, req, &res); err != nil {
		return entity.IssuedToken{}, fmt.Errorf("%w: %v", apperr.ErrUpstreamAuth, err)
	}
	if res.AccessToken == "" {
		return entity.IssuedToken{}, fmt.Errorf("%w: %s %s", apperr.ErrUpstreamAuth, res.ErrorCode, res.ErrorDesc)
	}
	return entity.IssuedToken{AccessToken: res.AccessToken, ExpiresInSeconds: res.ExpiresIn}, nil
}
