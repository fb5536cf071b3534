// Package httpapi exposes the account operations over HTTP using gin.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/beppofit-auth/internal/logging"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/oauth"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/services"
	"github.com/gin-gonic/gin"
)

// Accounts is the account lifecycle the handlers drive.
type Accounts interface {
	Register(ctx context.Context, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	DeleteAccount(ctx context.Context, subjectID string) error
	FederatedUpsert(ctx context.Context, externalID, email string, emailVerified bool) (*services.AuthResult, error)
	Authenticate(token string) (string, error)
}

// StateStore keeps OAuth state and PKCE verifiers between the redirect and
// the callback.
type StateStore interface {
	Create(ctx context.Context) (state, verifier string, err error)
	Consume(ctx context.Context, state string) (verifier string, err error)
}

type Handler struct {
	accounts    Accounts
	provider    oauth.Provider
	states      StateStore
	frontendURL string
	logger      logging.Logger
}

// Options wires optional federated login. Provider and States must both be
// set for the Google routes to be mounted.
type Options struct {
	Provider    oauth.Provider
	States      StateStore
	FrontendURL string
}

func NewHandler(a Accounts, l logging.Logger, o Options) *Handler {
	return &Handler{
		accounts:    a,
		provider:    o.Provider,
		states:      o.States,
		frontendURL: o.FrontendURL,
		logger:      l.With("module", "http"),
	}
}

// Router builds the gin engine with all routes and middleware.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger), permissiveCORS())

	r.GET("/", h.root)

	a := r.Group("/auth")
	a.POST("/register", h.register)
	a.POST("/login", h.login)
	a.GET("/verify", h.verifyEmail)
	a.POST("/forgot-password", h.forgotPassword)
	a.POST("/reset-password", h.resetPassword)
	a.DELETE("/me", RequireBearer(h.accounts), h.deleteMe)

	if h.provider != nil && h.states != nil {
		a.GET("/google", h.oauthStart)
		a.GET("/google/callback", h.oauthCallback)
	}

	return r
}

func (h *Handler) root(c *gin.Context) {
	c.String(http.StatusOK, "Hello, BeppoFit!")
}
