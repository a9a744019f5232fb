/*
 * @Description: 定时重新列举存储桶，刷新照片列表缓存
 * @Author: yzcheng90
 * @Date: 2025-11-18 16:24:00
 * @LastEditTime: 2025-11-22 10:03:29
 * @LastEditors: yzcheng90
 */
package task

import (
	"context"
	"log"
	"time"

	"github.com/yzcheng90/Photography-vue/pkg/domain/model"
)

// PhotoRefresher 照片列表刷新方，photo.Service 实现了该接口
type PhotoRefresher interface {
	Refresh(ctx context.Context) ([]model.Photo, error)
}

// PhotoRelistJob 只刷新列表缓存，元数据缓存不会被定时清除。
// 新列表通过 PhotoListed 事件触发元数据预热。
type PhotoRelistJob struct {
	refresher PhotoRefresher
	timeout   time.Duration
}

// NewPhotoRelistJob 是任务的构造函数
func NewPhotoRelistJob(refresher PhotoRefresher) *PhotoRelistJob {
	return &PhotoRelistJob{refresher: refresher, timeout: time.Minute}
}

func (j *PhotoRelistJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	photos, err := j.refresher.Refresh(ctx)
	if err != nil {
		log.Printf("[PhotoRelistJob] 刷新照片列表失败: %v", err)
		return
	}
	log.Printf("[PhotoRelistJob] 照片列表已刷新，共 %d 张", len(photos))
}

func (j *PhotoRelistJob) Name() string {
	return "PhotoRelistJob"
}
