package router

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/cinematch/internal/handler"
	"github.com/user/cinematch/internal/middleware"
	"github.com/user/cinematch/internal/utils"
)

const sessionName = "cinematch_session"

// NewEngine 创建 gin 引擎并挂载中间件、Session、模板和路由
func NewEngine(h *handler.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// 启用 gzip，/metrics 由 promhttp 自行压缩
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 中间件
	r.Use(middleware.Logger())
	r.Use(middleware.Security())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	// 设置 Session 中间件，SessionTTL 为 0 时使用浏览器会话 Cookie
	store := cookie.NewStore([]byte(h.Config.AppSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(h.Config.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(middleware.OptionalAuth(h.Sessions))

	// 模板与静态文件
	if dir := h.Config.TemplatesDir; dir != "" {
		r.HTMLRender = LoadTemplates(dir)
	}
	if dir := h.Config.StaticDir; dir != "" {
		r.Static("/static", dir)
	}

	RegisterRoutes(r, h)
	return r
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/", h.Home)

	// ==================== 电影（TMDB 代理）====================
	r.GET("/recommendations/:genre", h.Recommendations)
	r.GET("/trending", h.Trending)
	r.GET("/new-releases", h.NewReleases)
	r.GET("/top-rated", h.TopRated)
	r.GET("/movie/:id", h.MovieDetail)
	r.GET("/movie/:id/trailer", h.MovieTrailer)

	// ==================== 片单 ====================
	r.GET("/watchlist", h.WatchlistList)
	r.POST("/watchlist/:id", h.WatchlistAdd)
	r.DELETE("/watchlist/:id", h.WatchlistRemove)

	// ==================== 账号 ====================
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/login-check", h.LoginCheck)
	r.GET("/logout", h.Logout)

	r.NoRoute(func(c *gin.Context) {
		utils.NotFound(c, "")
	})
}

// LoadTemplates 使用 multitemplate 加载模板，解决模板继承问题
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	// 获取布局和局部模板
	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	partials, err := filepath.Glob(templatesDir + "/partials/*.html")
	if err != nil {
		panic(err)
	}

	// 组装模板文件列表
	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+len(partials)+1)
		files = append(files, layouts...)
		files = append(files, partials...)
		files = append(files, view)
		return files
	}

	// 注册所有页面模板
	pages := []string{"index"}

	for _, page := range pages {
		viewPath := templatesDir + "/pages/" + page + ".html"
		r.AddFromFiles(page+".html", assemble(viewPath)...)
	}

	return r
}
