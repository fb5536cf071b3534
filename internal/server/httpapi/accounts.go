package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/beppofit-auth/internal/common"
	"github.com/dmitrijs2005/beppofit-auth/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if !h.bind(c, &req) {
		return
	}

	res, err := h.accounts.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}

	res, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) verifyEmail(c *gin.Context) {
	if err := h.accounts.VerifyEmail(c.Request.Context(), c.Query("token")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.MsgEmailVerified)
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, common.BadRequest("Invalid request body"))
		return
	}

	if err := h.accounts.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.MsgResetRequested)
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.accounts.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.MsgPasswordReset)
}

func (h *Handler) deleteMe(c *gin.Context) {
	if err := h.accounts.DeleteAccount(c.Request.Context(), SubjectFrom(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.MsgAccountDeleted)
}
