/*
 * @Description: 任务接口
 * @Author: yzcheng90
 * @Date: 2025-11-18 16:09:46
 * @LastEditTime: 2025-11-18 16:20:36
 * @LastEditors: yzcheng90
 */
package task

// Job 与 cron.Job 兼容，Name 用于日志
type Job interface {
	Run()
	Name() string
}
