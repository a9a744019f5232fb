/*
 * @Description: 统一的 JSON 响应结构与错误到状态码的映射
 * @Author: yzcheng90
 * @Date: 2025-11-17 15:16:18
 * @LastEditTime: 2025-11-22 19:08:52
 * @LastEditors: yzcheng90
 */
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yzcheng90/Photography-vue/pkg/constant"
)

// Response 是统一的API返回结构体
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Fail 失败响应
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// SuccessWithStatus 成功响应，允许自定义 HTTP 状态码，例如 202 Accepted
func SuccessWithStatus(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// StatusOf 将业务错误映射为 HTTP 状态码
func StatusOf(err error) int {
	switch {
	case errors.Is(err, constant.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, constant.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, constant.ErrFeatureNotSupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Error 按错误类型返回失败响应，500 时不向客户端暴露内部细节
func Error(c *gin.Context, err error, message string) {
	code := StatusOf(err)
	if code == http.StatusInternalServerError {
		Fail(c, code, message)
		return
	}
	Fail(c, code, message+": "+err.Error())
}
