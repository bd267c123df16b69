package remote

import (
	"context"
	"net/http"
	"time"
)

// UserInfo identifies the authenticated user.
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Authenticator is the opaque session collaborator: it holds the
// credentials and performs authenticated requests. The data layer never
// inspects tokens itself.
type Authenticator interface {
	IsAuthenticated() bool
	UserInfo() UserInfo
	Do(req *http.Request) (*http.Response, error)
}

// TokenAuth is a bearer-token Authenticator over a plain HTTP client.
type TokenAuth struct {
	Token  string
	User   UserInfo
	Client *http.Client
}

func (a *TokenAuth) IsAuthenticated() bool {
	return a.Token != ""
}

func (a *TokenAuth) UserInfo() UserInfo {
	return a.User
}

func (a *TokenAuth) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+a.Token)
	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}

// authPollInterval is how often WaitReady re-checks a late-initializing
// auth collaborator.
const authPollInterval = 100 * time.Millisecond

// WaitReady polls until the authenticator reports ready or the timeout
// elapses, failing fast with ErrAuthTimeout instead of hanging.
func WaitReady(ctx context.Context, auth Authenticator, timeout time.Duration) error {
	if auth.IsAuthenticated() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(authPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ErrAuthTimeout
		case <-ticker.C:
			if auth.IsAuthenticated() {
				return nil
			}
		}
	}
}
