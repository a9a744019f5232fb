/*
 * @Description: 对外导出的事件主题
 * @Author: yzcheng90
 * @Date: 2025-11-17 20:30:37
 * @LastEditTime: 2025-11-17 20:31:49
 * @LastEditors: yzcheng90
 */
package constant

import "github.com/yzcheng90/Photography-vue/internal/pkg/event"

// EventTopic 事件主题类型
type EventTopic = event.Topic

const (
	// EventPhotoListed 照片列表刷新完成
	EventPhotoListed EventTopic = event.PhotoListed
)
