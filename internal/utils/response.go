package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody 代理接口统一错误结构
type ErrorBody struct {
	Error string `json:"error"`
}

// Result 账号接口统一响应结构，业务失败同样返回 200
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// Error 返回错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorBody{Error: message})
}

// NotFound 返回404错误
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Error(c, http.StatusNotFound, message)
}

// InternalServerError 返回500错误
func InternalServerError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	Error(c, http.StatusInternalServerError, message)
}

// Success 返回成功结果
func Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Result{Success: true, Message: message})
}

// Fail 返回业务失败结果
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Result{Success: false, Message: message})
}

// Message 返回只带 message 的响应（片单接口）
func Message(c *gin.Context, code int, message string, movieID *int) {
	body := gin.H{"message": message}
	if movieID != nil {
		body["movie_id"] = *movieID
	}
	c.JSON(code, body)
}
