package api_router

import (
	"net/http"
	"time"

	"github.com/haierkeys/site-text-service/internal/app"
	"github.com/haierkeys/site-text-service/internal/dto"
	"github.com/haierkeys/site-text-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

// AuthHandler 会话 API 路由处理器
type AuthHandler struct {
	*Handler
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(a *app.App) *AuthHandler {
	return &AuthHandler{Handler: NewHandler(a)}
}

// Login 管理员登录
// @Summary 登录
// @Description 校验邮箱与密码，签发会话 Token 并写入 httpOnly Cookie
// @Tags 会话
// @Accept json
// @Produce json
// @Param params body dto.AuthLoginRequest true "登录参数"
// @Success 200 {object} dto.AuthLoginResponse "成功"
// @Failure 401 {object} apperrors.AppError "账号或密码错误"
// @Failure 429 {object} apperrors.AppError "请求过于频繁"
// @Failure 503 {object} apperrors.AppError "会话存储不可用"
// @Router /api/admin/auth [post]
func (h *AuthHandler) Login(c *gin.Context) {
	params := &dto.AuthLoginRequest{}
	if !h.bind(c, "AuthHandler.Login", params) {
		return
	}
	res, err := h.App.AuthService.Login(requestContext(c), params)
	if err != nil {
		h.fail(c, "AuthHandler.Login", err)
		return
	}
	h.setCookie(c, res.Token, time.Until(time.Time(res.ExpiresAt)))
	success(c, res)
}

// Status 当前会话状态
// @Summary 会话状态
// @Description 未登录时返回 authenticated=false，不视为错误
// @Tags 会话
// @Produce json
// @Success 200 {object} dto.AuthStatusResponse "成功"
// @Router /api/admin/auth [get]
func (h *AuthHandler) Status(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		success(c, &dto.AuthStatusResponse{Authenticated: false})
		return
	}
	success(c, &dto.AuthStatusResponse{Authenticated: true, User: dto.NewAuthUserDTO(identity)})
}

// Logout 退出登录
// @Summary 退出登录
// @Description 撤销当前会话并清除 Cookie。未登录时同样返回成功
// @Tags 会话
// @Produce json
// @Success 200 {object} dto.SuccessResponse "成功"
// @Failure 503 {object} apperrors.AppError "会话存储不可用"
// @Router /api/admin/auth [delete]
func (h *AuthHandler) Logout(c *gin.Context) {
	if identity := middleware.GetIdentity(c); identity != nil {
		if err := h.App.AuthService.Logout(requestContext(c), identity); err != nil {
			h.fail(c, "AuthHandler.Logout", err)
			return
		}
	}
	h.setCookie(c, "", -1)
	success(c, &dto.SuccessResponse{Success: true})
}

// setCookie 写入会话 Cookie，maxAge <= 0 时删除
func (h *AuthHandler) setCookie(c *gin.Context, token string, maxAge time.Duration) {
	sec := h.App.Config().Security
	seconds := int(maxAge / time.Second)
	if maxAge < 0 {
		seconds = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sec.CookieName, token, seconds, "/", "", sec.CookieSecure, true)
}
