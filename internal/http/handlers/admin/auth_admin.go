package admin

import (
	"errors"
	"time"

	"github.com/RuleViz/LightBlog/internal/http/response"
	"github.com/RuleViz/LightBlog/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求，整站共享一个管理密码
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// Login 管理端登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	token, expiresAt, err := h.AuthService.Login(req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			requestLog(c).Warnw("admin_login_failed", "ip", c.ClientIP())
			respondError(c, response.CodeUnauthorized, "密码错误", nil)
			return
		}
		respondError(c, response.CodeInternal, "登录失败", err)
		return
	}

	requestLog(c).Infow("admin_login_success", "ip", c.ClientIP())
	response.Success(c, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}
