package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/beppofit-auth/internal/common"
	"github.com/gin-gonic/gin"
)

func statusOf(k common.Kind) int {
	switch k {
	case common.KindBadRequest:
		return http.StatusBadRequest
	case common.KindUnauthorized:
		return http.StatusUnauthorized
	case common.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error": message}. Unclassified errors are
// logged and rendered as a generic internal error.
func (h *Handler) writeError(c *gin.Context, err error) {
	kind := common.KindOf(err)
	if kind == common.KindInternal {
		h.logger.Error(c.Request.Context(), "Request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(statusOf(kind), gin.H{"error": common.MessageOf(err)})
}

// bind decodes a JSON body and validates it. It writes the 400 itself and
// reports whether the handler should continue.
func (h *Handler) bind(c *gin.Context, req validatable) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.writeError(c, common.BadRequest("Invalid request body"))
		return false
	}
	if err := req.Validate(); err != nil {
		h.writeError(c, common.BadRequest(err.Error()))
		return false
	}
	return true
}
