package repository

import (
	"time"

	"github.com/user/cinematch/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WatchlistRepository struct {
	db *gorm.DB
}

func NewWatchlistRepository(db *gorm.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// List 获取片单中的全部电影 ID
func (r *WatchlistRepository) List() ([]int, error) {
	ids := make([]int, 0)
	err := r.db.Model(&model.WatchlistEntry{}).Order("id ASC").Pluck("movie_id", &ids).Error
	return ids, err
}

// Add 加入片单，已存在时不做修改并返回 false
func (r *WatchlistRepository) Add(movieID int) (bool, error) {
	entry := &model.WatchlistEntry{
		MovieID:   movieID,
		CreatedAt: time.Now(),
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "movie_id"}},
		DoNothing: true,
	}).Create(entry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Remove 移出片单，不存在时返回 false
func (r *WatchlistRepository) Remove(movieID int) (bool, error) {
	result := r.db.Where("movie_id = ?", movieID).Delete(&model.WatchlistEntry{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Count 片单条目数
func (r *WatchlistRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.WatchlistEntry{}).Count(&count).Error
	return count, err
}
