/*
 * @Description: 版本信息接口
 * @Author: yzcheng90
 * @Date: 2025-11-19 09:52:32
 * @LastEditTime: 2025-11-21 11:36:56
 * @LastEditors: yzcheng90
 */
package version

import (
	"github.com/gin-gonic/gin"

	"github.com/yzcheng90/Photography-vue/internal/pkg/version"
	"github.com/yzcheng90/Photography-vue/pkg/response"
)

// Handler 版本信息处理器
type Handler struct{}

// NewHandler 创建版本信息处理器实例
func NewHandler() *Handler {
	return &Handler{}
}

// GetVersion 获取版本信息
// @Summary      获取版本信息
// @Tags         辅助工具
// @Produce      json
// @Success      200  {object}  response.Response{data=version.BuildInfo}  "版本信息"
// @Router       /version [get]
func (h *Handler) GetVersion(c *gin.Context) {
	info := version.GetBuildInfo()
	c.Header("X-App-Version", info.String())
	response.Success(c, info, "获取版本信息成功")
}
