package service

import (
	"github.com/user/cinematch/internal/model"
)

const (
	youtubeWatchURL = "https://www.youtube.com/watch?v="
	topCastSize     = 5
)

// tmdbMovie TMDB 列表接口中的单个电影
type tmdbMovie struct {
	ID          *int     `json:"id"`
	Title       *string  `json:"title"`
	PosterPath  *string  `json:"poster_path"`
	VoteAverage *float64 `json:"vote_average"`
	GenreIDs    []int    `json:"genre_ids"`
}

type tmdbListResponse struct {
	Page    int         `json:"page"`
	Results []tmdbMovie `json:"results"`
}

type tmdbCastMember struct {
	Name        *string `json:"name"`
	Character   *string `json:"character"`
	ProfilePath *string `json:"profile_path"`
}

type tmdbCreditsResponse struct {
	Cast []tmdbCastMember `json:"cast"`
}

type tmdbVideo struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type tmdbVideosResponse struct {
	Results []tmdbVideo `json:"results"`
}

// shapeSummaries 转换为精简结构，保持原顺序
func shapeSummaries(raw []tmdbMovie) []model.MovieSummary {
	movies := make([]model.MovieSummary, 0, len(raw))
	for _, m := range raw {
		summary := model.MovieSummary{
			ID:         m.ID,
			Title:      m.Title,
			PosterPath: m.PosterPath,
			GenreIDs:   m.GenreIDs,
		}
		if m.VoteAverage != nil {
			summary.VoteAverage = *m.VoteAverage
		}
		if summary.GenreIDs == nil {
			summary.GenreIDs = []int{}
		}
		movies = append(movies, summary)
	}
	return movies
}

// shapeDetail 原样透传详情，注入前 5 位演员
func shapeDetail(rawDetail map[string]any, credits tmdbCreditsResponse) model.MovieDetail {
	detail := make(model.MovieDetail, len(rawDetail)+1)
	for k, v := range rawDetail {
		detail[k] = v
	}

	n := min(len(credits.Cast), topCastSize)
	cast := make([]model.CastMember, 0, n)
	for _, c := range credits.Cast[:n] {
		cast = append(cast, model.CastMember{
			Name:        c.Name,
			Character:   c.Character,
			ProfilePath: c.ProfilePath,
		})
	}
	detail["cast"] = cast

	return detail
}

// pickTrailer 取第一个 YouTube 上的 Trailer
func pickTrailer(videos []tmdbVideo) (string, bool) {
	for _, v := range videos {
		if v.Site == "YouTube" && v.Type == "Trailer" {
			return youtubeWatchURL + v.Key, true
		}
	}
	return "", false
}
