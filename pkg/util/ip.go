/*
 * @Description: 获取客户端真实IP，兼容常见代理与 CDN 头部
 * @Author: yzcheng90
 * @Date: 2025-11-18 20:12:09
 * @LastEditTime: 2025-11-20 23:41:16
 * @LastEditors: yzcheng90
 */
package util

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// 按优先级排列，CF/EO/Ali 分别对应 Cloudflare、腾讯云 EdgeOne、阿里云 CDN
var clientIPHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"CF-Connecting-IP",
	"EO-Connecting-IP",
	"Ali-CDN-Real-IP",
	"True-Client-IP",
}

// GetRealClientIP 返回第一个合法的头部 IP，都没有时使用 RemoteAddr
func GetRealClientIP(c *gin.Context) string {
	for _, header := range clientIPHeaders {
		value := c.GetHeader(header)
		if value == "" {
			continue
		}
		// X-Forwarded-For 格式为 client, proxy1, proxy2
		first := strings.TrimSpace(strings.Split(value, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}

	if ip, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return ip
	}
	return c.Request.RemoteAddr
}
