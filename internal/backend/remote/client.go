// Package remote implements the backend contract against the hosted
// provider: password authentication through the Identity Toolkit API and
// task persistence through the project's document store, with a websocket
// channel for realtime snapshots. The adapter is a thin mapping; it holds
// no task state of its own.
package remote

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"taskflow/internal/config"
	"taskflow/internal/errors"
	"taskflow/internal/task"
)

// APITimeout bounds individual document store calls. The watch channel is
// exempt.
const APITimeout = 10 * time.Second

// Client implements the backend contract for the remote provider.
type Client struct {
	cfg     *config.Config
	idsvc   *identitytoolkit.Service
	baseURL string

	// ctx is the process-lifetime context the authorized HTTP client is
	// built against.
	ctx context.Context

	mu      sync.Mutex
	session *storedSession
	httpc   *http.Client
}

// New creates a remote client. A remembered session, if present on disk,
// is restored so CurrentUser works without a network round trip.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	idsvc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.Remote.APIKey))
	if err != nil {
		return nil, errors.NewConfigurationError("identity service init", err)
	}

	c := &Client{
		cfg:     cfg,
		idsvc:   idsvc,
		baseURL: config.ResolveDatabaseURL(cfg.Remote),
		ctx:     ctx,
	}

	if sess, err := loadSession(cfg.TokenPath()); err == nil && sess != nil {
		c.setSession(sess)
	}
	return c, nil
}

// SupportsRealtime reports that the remote provider pushes snapshots.
func (c *Client) SupportsRealtime() bool { return true }

// Close releases client resources.
func (c *Client) Close() error { return nil }

// CurrentUser returns the remembered session user, or nil when signed out.
func (c *Client) CurrentUser(ctx context.Context) (*task.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, nil
	}
	user := c.session.User
	return &user, nil
}

// setSession installs the session and rebuilds the authorized HTTP client
// with an auto-refreshing token source.
func (c *Client) setSession(sess *storedSession) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = sess
	src := oauth2.ReuseTokenSource(sess.Token, &refreshTokenSource{
		ctx:          c.ctx,
		apiKey:       c.cfg.Remote.APIKey,
		refreshToken: sess.Token.RefreshToken,
	})
	c.httpc = oauth2.NewClient(c.ctx, src)
}

// authorizedClient returns the HTTP client for document store calls.
func (c *Client) authorizedClient() (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpc == nil {
		return nil, errors.NewAuthError("not signed in (run: taskflow login)", nil)
	}
	return c.httpc, nil
}
