package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/gin-gonic/gin"
)

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	pair, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newTokenResponse(pair))
}

func (h *handler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	pair, err := h.Auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newTokenResponse(pair))
}

func (h *handler) logout(c *gin.Context) {
	id := identity(c)
	if id == nil {
		writeError(c, h.log, common.ErrorUnauthorized)
		return
	}
	if err := h.Auth.Logout(c.Request.Context(), id.Claims()); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) health(c *gin.Context) {
	if err := h.DB.PingContext(c.Request.Context()); err != nil {
		h.log.Warn(c.Request.Context(), "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
