package model

import (
	"time"
)

// User 用户模型
type User struct {
	ID           int       `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:80;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:200;not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// WatchlistEntry 共享片单条目
type WatchlistEntry struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	MovieID   int       `json:"movie_id" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 与原有库表保持一致
func (WatchlistEntry) TableName() string {
	return "watchlist"
}
