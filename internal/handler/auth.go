package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/user/cinematch/internal/middleware"
	"github.com/user/cinematch/internal/service"
	"github.com/user/cinematch/internal/utils"
)

// credentialsForm 注册 / 登录表单
type credentialsForm struct {
	Username string `form:"username" json:"username" binding:"required,max=80"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Register 注册处理
func (h *Handler) Register(c *gin.Context) {
	var form credentialsForm
	if err := c.ShouldBind(&form); err != nil {
		utils.Fail(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	if _, err := h.Accounts.Register(form.Username, form.Password); err != nil {
		failAuth(c, err, "Registration failed")
		return
	}

	utils.Success(c, "Registration successful!")
}

// Login 登录处理
func (h *Handler) Login(c *gin.Context) {
	var form credentialsForm
	if err := c.ShouldBind(&form); err != nil {
		utils.Fail(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.Accounts.Verify(form.Username, form.Password)
	if err != nil {
		failAuth(c, err, "Login failed")
		return
	}

	token, err := h.Sessions.Issue(user.Username)
	if err != nil {
		logrus.WithError(err).WithField("username", user.Username).Error("[Auth] 签发会话失败")
		utils.Fail(c, http.StatusInternalServerError, "Login failed")
		return
	}

	// 保存令牌到 Session，旧会话一并注销
	session := sessions.Default(c)
	h.Sessions.Revoke(middleware.SessionToken(c))
	session.Set(middleware.SessionTokenKey, token)
	if err := session.Save(); err != nil {
		h.Sessions.Revoke(token)
		logrus.WithError(err).Error("[Auth] 保存 Session 失败")
		utils.Fail(c, http.StatusInternalServerError, "Login failed")
		return
	}

	logrus.WithField("username", user.Username).Info("[Auth] 用户登录")
	c.JSON(http.StatusOK, utils.Result{
		Success: true,
		Message: fmt.Sprintf("Welcome %s!", user.Username),
		Token:   token,
	})
}

// LoginCheck 当前客户端是否已登录
func (h *Handler) LoginCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"logged_in": middleware.GetUsername(c) != ""})
}

// Logout 登出，重复调用无副作用
func (h *Handler) Logout(c *gin.Context) {
	h.Sessions.Revoke(middleware.ActiveToken(c))
	h.Sessions.Revoke(middleware.SessionToken(c))

	// 清理 Session
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		logrus.WithError(err).Warn("[Auth] 清理 Session 失败")
	}

	utils.Success(c, "Logged out")
}

// failAuth 业务错误返回 200 + success=false，其余为 500
func failAuth(c *gin.Context, err error, fallback string) {
	message, ok := service.MessageOf(err)
	if !ok {
		message = fallback
	}
	utils.Fail(c, statusFor(service.KindOf(err)), message)
}
