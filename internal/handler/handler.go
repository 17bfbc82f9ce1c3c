package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/user/cinematch/internal/config"
	"github.com/user/cinematch/internal/metrics"
	"github.com/user/cinematch/internal/middleware"
	"github.com/user/cinematch/internal/repository"
	"github.com/user/cinematch/internal/service"
	"github.com/user/cinematch/internal/utils"
)

// Handler HTTP 处理器
type Handler struct {
	Repos    *repository.Repositories
	Config   *config.Config
	Movies   *service.TMDBService
	Accounts *service.AccountService
	Sessions *service.SessionGate
}

// NewHandler 创建处理器，client 为访问 TMDB 的 HTTP 客户端
func NewHandler(repos *repository.Repositories, cfg *config.Config, client service.JSONGetter) *Handler {
	sessions := service.NewSessionGate(cfg.AppSecret, cfg.SessionTTL)
	metrics.TrackActiveSessions(sessions.Active)

	return &Handler{
		Repos:    repos,
		Config:   cfg,
		Movies:   service.NewTMDBService(client, cfg),
		Accounts: service.NewAccountService(repos.User),
		Sessions: sessions,
	}
}

// Home 首页
func (h *Handler) Home(c *gin.Context) {
	count, err := h.Repos.Watchlist.Count()
	if err != nil {
		logrus.WithError(err).Warn("[Watchlist] 统计片单失败")
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":          h.Config.SiteName,
		"SiteName":       h.Config.SiteName,
		"Genres":         service.GenreNames(),
		"LoggedIn":       middleware.GetUsername(c) != "",
		"WatchlistCount": count,
	})
}

// statusFor 错误分类到 HTTP 状态码的唯一映射
func statusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindUnknownGenre, service.KindTrailerNotFound, service.KindNotFound:
		return http.StatusNotFound
	case service.KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	case service.KindUsernameTaken, service.KindInvalidCredentials:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// respondError 输出 {"error": ...}，上游错误细节不外泄
func respondError(c *gin.Context, err error) {
	message, ok := service.MessageOf(err)
	if !ok {
		message = "Internal server error"
	}
	utils.Error(c, statusFor(service.KindOf(err)), message)
}
