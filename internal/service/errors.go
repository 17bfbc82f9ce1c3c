package service

import (
	"errors"
	"fmt"
)

// ErrorKind 错误分类，由 handler 统一翻译为 HTTP 状态码
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnknownGenre
	KindUpstreamTimeout
	KindUpstreamFailure
	KindTrailerNotFound
	KindUsernameTaken
	KindInvalidCredentials
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnknownGenre:
		return "unknown_genre"
	case KindUpstreamTimeout:
		return "upstream_timeout"
	case KindUpstreamFailure:
		return "upstream_failure"
	case KindTrailerNotFound:
		return "trailer_not_found"
	case KindUsernameTaken:
		return "username_taken"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error 带分类的业务错误
// Message 可以直接返回给调用方，Err 只用于日志
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf 取出错误分类，非 *Error 返回 KindUnknown
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf 取出可对外展示的错误信息
func MessageOf(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message, true
	}
	return "", false
}
