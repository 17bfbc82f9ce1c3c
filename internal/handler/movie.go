package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/cinematch/internal/model"
	"github.com/user/cinematch/internal/service"
)

var errMovieNotFound = &service.Error{Kind: service.KindNotFound, Op: "handler.movie_id", Message: "Movie not found"}

// Recommendations 按类型推荐
func (h *Handler) Recommendations(c *gin.Context) {
	movies, err := h.Movies.ListByGenre(upstreamContext(c), c.Param("genre"), pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

// Trending 本周趋势
func (h *Handler) Trending(c *gin.Context) {
	movies, err := h.Movies.ListTrending(upstreamContext(c), pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

// NewReleases 最新上映
func (h *Handler) NewReleases(c *gin.Context) {
	movies, err := h.Movies.ListNewReleases(upstreamContext(c), pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

// TopRated 高分榜
func (h *Handler) TopRated(c *gin.Context) {
	movies, err := h.Movies.ListTopRated(upstreamContext(c), pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

// MovieDetail 电影详情（含前 5 位演员）
func (h *Handler) MovieDetail(c *gin.Context) {
	movieID, ok := movieIDParam(c)
	if !ok {
		respondError(c, errMovieNotFound)
		return
	}

	detail, err := h.Movies.GetDetails(upstreamContext(c), movieID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// MovieTrailer 预告片
func (h *Handler) MovieTrailer(c *gin.Context) {
	movieID, ok := movieIDParam(c)
	if !ok {
		respondError(c, errMovieNotFound)
		return
	}

	url, err := h.Movies.GetTrailer(upstreamContext(c), movieID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Trailer{YouTubeURL: url})
}

// pageParam 页码，整数原样转发给 TMDB，缺省或非整数时为 1
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		return 1
	}
	return page
}

// movieIDParam 解析路径中的电影 ID，只接受非负整数
func movieIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// upstreamContext 客户端断开不会中止上游请求，上游只受客户端超时约束
func upstreamContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}
