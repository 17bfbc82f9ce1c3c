package model

// MovieSummary 列表接口返回的精简电影信息
type MovieSummary struct {
	ID          *int    `json:"id"`
	Title       *string `json:"title"`
	PosterPath  *string `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	GenreIDs    []int   `json:"genre_ids"`
}

// CastMember 演员信息（取自 TMDB credits）
type CastMember struct {
	Name        *string `json:"name"`
	Character   *string `json:"character"`
	ProfilePath *string `json:"profile_path"`
}

// MovieDetail TMDB 详情原样透传，额外注入 cast 字段
type MovieDetail map[string]any

// Trailer 预告片链接
type Trailer struct {
	YouTubeURL string `json:"youtube_url"`
}
