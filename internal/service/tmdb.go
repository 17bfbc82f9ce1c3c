package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/user/cinematch/internal/config"
	"github.com/user/cinematch/internal/metrics"
	"github.com/user/cinematch/internal/model"
	"github.com/user/cinematch/internal/utils"
	"golang.org/x/sync/errgroup"
)

// 上游操作名，用于日志和监控
const (
	OpRecommendations = "recommendations"
	OpTrending        = "trending"
	OpNewReleases     = "new_releases"
	OpTopRated        = "top_rated"
	OpMovieDetails    = "movie_details"
	OpTrailer         = "trailer"
)

// JSONGetter 能发送 GET 请求并解析 JSON 的客户端，utils.HTTPClient 即满足
type JSONGetter interface {
	GetJSON(ctx context.Context, url string, target any) error
}

// TMDBService TMDB 代理服务，所有方法只读且无状态
type TMDBService struct {
	client  JSONGetter
	apiKey  string
	baseURL string
}

func NewTMDBService(client JSONGetter, cfg *config.Config) *TMDBService {
	return &TMDBService{
		client:  client,
		apiKey:  cfg.TMDBAPIKey,
		baseURL: cfg.TMDBBaseURL,
	}
}

// providerCall 一次对外操作的上下文信息
type providerCall struct {
	op         string
	failMsg    string
	timeoutMsg string
	fields     logrus.Fields
}

func newCall(op, subject string, fields logrus.Fields) providerCall {
	return providerCall{
		op:         op,
		failMsg:    "Failed to fetch " + subject,
		timeoutMsg: "TMDB request for " + subject + " timed out",
		fields:     fields,
	}
}

// ListByGenre 按类型获取热门电影
func (s *TMDBService) ListByGenre(ctx context.Context, genre string, page int) ([]model.MovieSummary, error) {
	genreID, ok := LookupGenre(genre)
	if !ok {
		return nil, &Error{
			Kind:    KindUnknownGenre,
			Op:      OpRecommendations,
			Message: fmt.Sprintf("Genre '%s' not found", genre),
		}
	}

	call := newCall(OpRecommendations, fmt.Sprintf("movies for genre '%s'", genre), logrus.Fields{
		"genre":    genre,
		"genre_id": genreID,
		"page":     page,
	})
	call.timeoutMsg = fmt.Sprintf("TMDB request for genre '%s' timed out", genre)

	params := url.Values{}
	params.Set("with_genres", strconv.Itoa(genreID))
	params.Set("sort_by", "popularity.desc")
	params.Set("page", strconv.Itoa(page))
	return s.list(ctx, call, "/discover/movie", params)
}

// ListTrending 本周趋势
func (s *TMDBService) ListTrending(ctx context.Context, page int) ([]model.MovieSummary, error) {
	call := newCall(OpTrending, "trending movies", logrus.Fields{"page": page})
	return s.list(ctx, call, "/trending/movie/week", pageParams(page))
}

// ListNewReleases 按上映日期倒序
func (s *TMDBService) ListNewReleases(ctx context.Context, page int) ([]model.MovieSummary, error) {
	call := newCall(OpNewReleases, "new releases", logrus.Fields{"page": page})
	params := pageParams(page)
	params.Set("sort_by", "release_date.desc")
	return s.list(ctx, call, "/discover/movie", params)
}

// ListTopRated 高分电影
func (s *TMDBService) ListTopRated(ctx context.Context, page int) ([]model.MovieSummary, error) {
	call := newCall(OpTopRated, "top rated movies", logrus.Fields{"page": page})
	return s.list(ctx, call, "/movie/top_rated", pageParams(page))
}

// GetDetails 并发获取详情和演职员，任一失败则整体失败
func (s *TMDBService) GetDetails(ctx context.Context, movieID int) (model.MovieDetail, error) {
	call := newCall(OpMovieDetails, "movie details", logrus.Fields{"movie_id": movieID})

	var (
		raw     map[string]any
		credits tmdbCreditsResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.fetch(gctx, call, fmt.Sprintf("/movie/%d", movieID), nil, &raw)
	})
	g.Go(func() error {
		return s.fetch(gctx, call, fmt.Sprintf("/movie/%d/credits", movieID), nil, &credits)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return shapeDetail(raw, credits), nil
}

// GetTrailer 获取 YouTube 预告片链接
func (s *TMDBService) GetTrailer(ctx context.Context, movieID int) (string, error) {
	call := newCall(OpTrailer, "trailer", logrus.Fields{"movie_id": movieID})

	params := url.Values{}
	params.Set("language", "en-US")

	var videos tmdbVideosResponse
	if err := s.fetch(ctx, call, fmt.Sprintf("/movie/%d/videos", movieID), params, &videos); err != nil {
		return "", err
	}

	trailer, ok := pickTrailer(videos.Results)
	if !ok {
		logrus.WithField("movie_id", movieID).Info("[TMDB] 未找到预告片")
		return "", &Error{Kind: KindTrailerNotFound, Op: OpTrailer, Message: "No trailer found"}
	}
	return trailer, nil
}

func (s *TMDBService) list(ctx context.Context, call providerCall, path string, params url.Values) ([]model.MovieSummary, error) {
	var resp tmdbListResponse
	if err := s.fetch(ctx, call, path, params, &resp); err != nil {
		return nil, err
	}
	return shapeSummaries(resp.Results), nil
}

// fetch 请求上游并对错误分类，错误信息中的 api_key 会被隐藏
func (s *TMDBService) fetch(ctx context.Context, call providerCall, path string, params url.Values, target any) error {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("api_key", s.apiKey)
	endpoint := s.baseURL + path + "?" + query.Encode()

	query.Set("api_key", "***")
	redacted := s.baseURL + path + "?" + query.Encode()

	log := logrus.WithFields(call.fields).WithFields(logrus.Fields{"op": call.op, "url": redacted})
	log.Debug("[TMDB] 请求上游")

	start := time.Now()
	err := s.client.GetJSON(ctx, endpoint, target)
	elapsed := time.Since(start)
	if err == nil {
		metrics.ObserveProvider(call.op, metrics.OutcomeSuccess, elapsed)
		return nil
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redacted
	}

	// 同组请求已失败导致的取消，由失败的那一路记录日志和指标
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return &Error{Kind: KindUpstreamFailure, Op: call.op, Message: call.failMsg, Err: err}
	}

	if utils.IsTimeout(err) {
		metrics.ObserveProvider(call.op, metrics.OutcomeTimeout, elapsed)
		log.WithError(err).Warn("[TMDB] 上游请求超时")
		return &Error{Kind: KindUpstreamTimeout, Op: call.op, Message: call.timeoutMsg, Err: err}
	}

	metrics.ObserveProvider(call.op, metrics.OutcomeFailure, elapsed)
	log.WithError(err).Error("[TMDB] 上游请求失败")
	return &Error{Kind: KindUpstreamFailure, Op: call.op, Message: call.failMsg, Err: err}
}

func pageParams(page int) url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	return params
}
