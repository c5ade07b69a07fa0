package util

import (
	"github.com/gin-gonic/gin"
)

// Response 是成功返回的数据体
type Response map[string]interface{}

// 业务错误码
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeNotFound     = 40401
	CodeConflict     = 40901
	CodeServerErr    = 50001
)

// Success 按给定状态码原样返回数据
func Success(c *gin.Context, status int, data Response) {
	c.JSON(status, data)
}

// Error 统一错误返回，客户端读取 error 字段
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":  code,
		"error": msg,
	})
}
