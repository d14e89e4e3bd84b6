// Package dto defines data transfer objects for the KIS Open API.
package dto

// Envelope is the result header shared by every quotation response.
type Envelope struct {
	RtCd  string `json:"rt_cd"`  // "0" on success
	MsgCd string `json:"msg_cd"` // Provider message code
	Msg1  string `json:"msg1"`   // Human readable message
}

// OK reports whether the provider accepted the request.
func (e Envelope) OK() bool {
	return e.RtCd == "0"
}

// TokenRequest is the body of POST /oauth2/tokenP.
type TokenRequest struct {
	GrantType string `json:"grant_type"`
	AppKey    string `json:"appkey"`
	AppSecret string `json:"appsecret"`
}

// TokenResponse is the response of POST /oauth2/tokenP.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	ErrorCode   string `json:"error_code,omitempty"`
	ErrorDesc   string `json:"error_description,omitempty"`
}
