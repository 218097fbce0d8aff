package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/civicpulse/feedback-platform/pkg/common/models"
	"github.com/civicpulse/feedback-platform/pkg/gateway/httpclient"
	"golang.org/x/oauth2"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRejected      = errors.New("token rejected by identity provider")
)

// IdPAuthenticator delegates administrator authentication to an external
// identity provider. The platform never owns credentials: email+password go
// straight to the provider and the provider's bearer token comes back.
type IdPAuthenticator struct {
	config     *oauth2.Config
	issuer     string
	httpClient *http.Client
}

func NewIdPAuthenticator(issuer, clientID, clientSecret string, timeout time.Duration) (*IdPAuthenticator, error) {
	if issuer == "" || clientID == "" {
		return nil, fmt.Errorf("identity provider configuration incomplete")
	}
	issuer = strings.TrimRight(strings.TrimSpace(issuer), "/")

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  fmt.Sprintf("%s/authorize", issuer),
			TokenURL: fmt.Sprintf("%s/token", issuer),
		},
		Scopes: []string{"openid", "profile", "email"},
	}

	return &IdPAuthenticator{
		config:     config,
		issuer:     issuer,
		httpClient: httpclient.New(timeout),
	}, nil
}

// Login exchanges credentials via the resource-owner password grant.
func (a *IdPAuthenticator) Login(ctx context.Context, email, password string) (models.AuthResponse, error) {
	if email == "" || password == "" {
		return models.AuthResponse{}, ErrInvalidCredentials
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	tok, err := a.config.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil && retrieveErr.Response.StatusCode < http.StatusInternalServerError {
			return models.AuthResponse{}, ErrInvalidCredentials
		}
		return models.AuthResponse{}, fmt.Errorf("identity provider exchange: %w", err)
	}

	resp := models.AuthResponse{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresAt:   tok.Expiry,
	}
	if resp.TokenType == "" {
		resp.TokenType = "Bearer"
	}
	return resp, nil
}

// ValidateToken asks the provider's userinfo endpoint about a bearer token.
// Network failures are retried; a rejection is final.
func (a *IdPAuthenticator) ValidateToken(ctx context.Context, token string) (map[string]interface{}, error) {
	if token == "" {
		return nil, ErrTokenRejected
	}

	// Only transient transport failures and server-side errors go around the
	// retry loop; a rejection or a non-retriable failure is final.
	var claims map[string]interface{}
	var finalErr error
	err := httpclient.Retry(ctx, 3, 100*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.issuer+"/userinfo", nil)
		if err != nil {
			finalErr = err
			return nil
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := a.httpClient.Do(req)
		if err != nil {
			if httpclient.IsRetriable(err) {
				return err
			}
			finalErr = err
			return nil
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			finalErr = ErrTokenRejected
			return nil
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("userinfo status %d", resp.StatusCode)
		}
		finalErr = nil
		return json.NewDecoder(resp.Body).Decode(&claims)
	})
	if err != nil {
		return nil, err
	}
	if finalErr != nil {
		return nil, finalErr
	}
	return claims, nil
}
