package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/user/cinematch/internal/utils"
)

// WatchlistList 获取片单
func (h *Handler) WatchlistList(c *gin.Context) {
	ids, err := h.Repos.Watchlist.List()
	if err != nil {
		logrus.WithError(err).Error("[Watchlist] 查询片单失败")
		utils.InternalServerError(c, "Failed to load watchlist")
		return
	}
	c.JSON(http.StatusOK, ids)
}

// WatchlistAdd 加入片单，重复添加同样返回 200
func (h *Handler) WatchlistAdd(c *gin.Context) {
	movieID, ok := movieIDParam(c)
	if !ok {
		utils.Message(c, http.StatusNotFound, "Movie not found", nil)
		return
	}

	added, err := h.Repos.Watchlist.Add(movieID)
	if err != nil {
		logrus.WithError(err).WithField("movie_id", movieID).Error("[Watchlist] 加入片单失败")
		utils.InternalServerError(c, "Failed to update watchlist")
		return
	}

	if !added {
		utils.Message(c, http.StatusOK, "Already in watchlist", &movieID)
		return
	}
	utils.Message(c, http.StatusOK, "Movie added", &movieID)
}

// WatchlistRemove 移出片单
func (h *Handler) WatchlistRemove(c *gin.Context) {
	movieID, ok := movieIDParam(c)
	if !ok {
		utils.Message(c, http.StatusNotFound, "Movie not found", nil)
		return
	}

	removed, err := h.Repos.Watchlist.Remove(movieID)
	if err != nil {
		logrus.WithError(err).WithField("movie_id", movieID).Error("[Watchlist] 移出片单失败")
		utils.InternalServerError(c, "Failed to update watchlist")
		return
	}

	if !removed {
		utils.Message(c, http.StatusNotFound, "Movie not found", nil)
		return
	}
	utils.Message(c, http.StatusOK, "Movie removed", &movieID)
}
