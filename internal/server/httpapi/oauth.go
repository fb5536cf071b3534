package httpapi

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/beppofit-auth/internal/common"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/oauth"
	"github.com/gin-gonic/gin"
)

const msgInvalidState = "Invalid OAuth state"

func (h *Handler) oauthStart(c *gin.Context) {
	state, verifier, err := h.states.Create(c.Request.Context())
	if err != nil {
		h.writeError(c, common.Internal(err))
		return
	}
	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state, verifier))
}

func (h *Handler) oauthCallback(c *gin.Context) {
	ctx := c.Request.Context()

	verifier, err := h.states.Consume(ctx, c.Query("state"))
	if err != nil {
		if errors.Is(err, oauth.ErrStateNotFound) {
			h.writeError(c, common.Unauthorized(msgInvalidState))
			return
		}
		h.writeError(c, common.Internal(err))
		return
	}

	if e := c.Query("error"); e != "" {
		h.writeError(c, common.Unauthorized("Authorization denied: "+e))
		return
	}

	code := c.Query("code")
	if code == "" {
		h.writeError(c, common.BadRequest("Missing authorization code"))
		return
	}

	id, err := h.provider.Exchange(ctx, code, verifier)
	if err != nil {
		h.writeError(c, common.Internal(err))
		return
	}

	res, err := h.accounts.FederatedUpsert(ctx, id.Subject, id.Email, id.EmailVerified)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Redirect(http.StatusFound, strings.TrimRight(h.frontendURL, "/")+"/auth/google/callback?token="+url.QueryEscape(res.Token))
}
