package runtime

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const apiKeyGrantType = "urn:ibm:params:oauth:grant-type:apikey"

// tokens are refreshed this long before they expire.
const tokenSlack = time.Minute

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Expiration   int64  `json:"expiration"`
}

// FetchToken exchanges the account api key for an IAM access token.
func (s *Service) FetchToken(ctx context.Context) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", apiKeyGrantType)
	form.Set("apikey", s.account.Token)
	req := request{
		api:     IAMAPI,
		method:  http.MethodPost,
		url:     s.opts.IAMURL + "/identity/token",
		header:  http.Header{},
		body:    strings.NewReader(form.Encode()),
		noToken: true,
	}
	req.header.Set("Content-Type", "application/x-www-form-urlencoded")
	tok := &TokenResponse{}
	if err := s.do(ctx, req, tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, &ServiceError{API: IAMAPI, Err: errors.New("empty access token")}
	}
	return tok, nil
}

// accessToken returns a cached token, fetching a new one when it is missing
// or about to expire.
func (s *Service) accessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.token != "" && s.now().Add(tokenSlack).Before(s.expiry) {
		token := s.token
		s.mu.Unlock()
		return token, nil
	}
	s.mu.Unlock()

	tok, err := s.FetchToken(ctx)
	if err != nil {
		return "", err
	}
	expiry := s.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	if tok.Expiration > 0 {
		expiry = time.Unix(tok.Expiration, 0)
	}
	s.mu.Lock()
	s.token = tok.AccessToken
	s.expiry = expiry
	s.mu.Unlock()
	s.log.Debug("access token refreshed", zap.Time("expiry", expiry))
	return tok.AccessToken, nil
}
