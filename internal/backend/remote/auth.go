package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"

	"taskflow/internal/errors"
	"taskflow/internal/task"
)

// secureTokenURL is the refresh endpoint paired with the identity service.
const secureTokenURL = "https://securetoken.googleapis.com/v1/token"

// storedSession is the remembered remote session persisted as token.json
// in the config directory.
type storedSession struct {
	User  task.User     `json:"user"`
	Token *oauth2.Token `json:"token"`
}

// SignIn authenticates with the provider's password check. Provider
// errors surface as auth errors; the session is remembered on success.
func (c *Client) SignIn(ctx context.Context, email, password string) (task.User, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	resp, err := c.idsvc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return task.User{}, wrapAuthError(err)
	}

	user := task.User{
		ID:          resp.LocalId,
		DisplayName: displayName(resp.DisplayName, resp.Email),
		Email:       resp.Email,
	}
	sess := &storedSession{
		User:  user,
		Token: tokenFromResponse(resp.IdToken, resp.RefreshToken, resp.ExpiresIn),
	}
	if err := c.rememberSession(sess); err != nil {
		return task.User{}, err
	}
	return user, nil
}

// SignUp creates the account, remembers the session, and writes the user
// profile document.
func (c *Client) SignUp(ctx context.Context, name, email, password string) (task.User, error) {
	authCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	resp, err := c.idsvc.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		DisplayName: name,
		Email:       email,
		Password:    password,
	}).Context(authCtx).Do()
	if err != nil {
		return task.User{}, wrapAuthError(err)
	}

	user := task.User{
		ID:          resp.LocalId,
		DisplayName: displayName(name, resp.Email),
		Email:       resp.Email,
	}
	sess := &storedSession{
		User:  user,
		Token: tokenFromResponse(resp.IdToken, resp.RefreshToken, resp.ExpiresIn),
	}
	if err := c.rememberSession(sess); err != nil {
		return task.User{}, err
	}

	if err := c.createUserProfile(ctx, user); err != nil {
		return task.User{}, err
	}
	return user, nil
}

// SignOut forgets the remembered session. The provider issues no
// server-side revocation for password sessions; dropping the token ends it.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	c.session = nil
	c.httpc = nil
	c.mu.Unlock()

	if err := c.cfg.RemoveToken(); err != nil && !os.IsNotExist(err) {
		return errors.NewBackendError("sign out", err)
	}
	return nil
}

func (c *Client) rememberSession(sess *storedSession) error {
	if err := c.cfg.EnsureDir(); err != nil {
		return errors.NewBackendError("create config directory", err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return errors.NewBackendError("encode session", err)
	}
	if err := os.WriteFile(c.cfg.TokenPath(), data, 0600); err != nil {
		return errors.NewBackendError("save session", err)
	}
	c.setSession(sess)
	return nil
}

func loadSession(path string) (*storedSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var sess storedSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	if sess.Token == nil || sess.Token.RefreshToken == "" {
		return nil, nil
	}
	return &sess, nil
}

func tokenFromResponse(idToken, refreshToken string, expiresIn int64) *oauth2.Token {
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	return &oauth2.Token{
		AccessToken:  idToken,
		TokenType:    "Bearer",
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(time.Duration(expiresIn) * time.Second),
	}
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return "User"
}

// refreshTokenSource exchanges the long-lived refresh token for a fresh
// id token. oauth2.ReuseTokenSource wraps it so the exchange only happens
// near expiry.
type refreshTokenSource struct {
	ctx          context.Context
	apiKey       string
	refreshToken string
}

func (s *refreshTokenSource) Token() (*oauth2.Token, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {s.refreshToken},
	}
	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost,
		secureTokenURL+"?key="+url.QueryEscape(s.apiKey),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAuthError("session expired (run: taskflow login)", nil)
	}

	var body struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("token refresh: %w", err)
	}

	expiry := time.Now().Add(55 * time.Minute)
	if d, err := time.ParseDuration(body.ExpiresIn + "s"); err == nil {
		expiry = time.Now().Add(d)
	}
	if body.RefreshToken != "" {
		s.refreshToken = body.RefreshToken
	}
	return &oauth2.Token{
		AccessToken:  body.IDToken,
		TokenType:    "Bearer",
		RefreshToken: s.refreshToken,
		Expiry:       expiry,
	}, nil
}

// wrapAuthError maps provider error codes to friendly auth errors.
func wrapAuthError(err error) error {
	if apiErr, ok := err.(*googleapi.Error); ok {
		msg := apiErr.Message
		switch {
		case strings.Contains(msg, "EMAIL_NOT_FOUND"), strings.Contains(msg, "INVALID_PASSWORD"),
			strings.Contains(msg, "INVALID_LOGIN_CREDENTIALS"):
			return errors.NewAuthError("invalid credentials", err)
		case strings.Contains(msg, "EMAIL_EXISTS"):
			return errors.NewAuthError("email already in use", err)
		case strings.Contains(msg, "WEAK_PASSWORD"):
			return errors.NewAuthError("password too weak", err)
		case strings.Contains(msg, "INVALID_EMAIL"):
			return errors.NewAuthError("invalid email address", err)
		}
	}
	if strings.Contains(err.Error(), "context deadline exceeded") {
		return errors.NewBackendError("auth request timed out", err)
	}
	return errors.NewAuthError("authentication failed", err)
}
