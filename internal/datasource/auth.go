package datasource

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Identity is the signed-in staff member as reported by /auth/me.
type Identity struct {
	ID          uint     `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	IsProtected bool     `json:"isProtected"`
	Permissions []string `json:"permissions"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*oauth2.Token, error) {
	var out struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
		ExpiresIn   int64  `json:"expiresIn"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/auth/login", nil, body, &out, false); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, errors.New("login response did not include an access token")
	}
	tok := &oauth2.Token{AccessToken: out.AccessToken, TokenType: out.TokenType}
	if out.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return tok, nil
}

func (c *Client) Me(ctx context.Context) (Identity, error) {
	var out struct {
		Staff Identity `json:"staff"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return Identity{}, err
	}
	return out.Staff, nil
}

type loginSource struct {
	mu       sync.Mutex
	client   *Client
	email    string
	password string
	timeout  time.Duration
}

func (s *loginSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Login(ctx, s.email, s.password)
}

// LoginTokenSource signs in with staff credentials and reuses the token until
// it expires.
func LoginTokenSource(c *Client, email, password string, timeout time.Duration) oauth2.TokenSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return oauth2.ReuseTokenSource(nil, &loginSource{client: c, email: email, password: password, timeout: timeout})
}

// StaticTokenSource wraps a pre-issued bearer token.
func StaticTokenSource(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}
