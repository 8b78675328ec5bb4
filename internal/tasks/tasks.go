package tasks

import "github.com/hibiken/asynq"

// 定义任务类型常量
const (
	// TypeRoomSweepScheduled 清扫预约删除时间已到的房间
	TypeRoomSweepScheduled = "room:sweep_scheduled"
	// TypeRoomSweepAlone 清扫创建者独处超过宽限期的房间
	TypeRoomSweepAlone = "room:sweep_alone"
)

// AloneRoomDeleteReason 是独处超时删除的固定审计事由。
const AloneRoomDeleteReason = "creator alone past grace period"

// NewRoomSweepScheduledTask 创建一次预约删除清扫任务。
// 清扫是对持久化状态的幂等修复，不携带负载：该删谁由执行时的查询决定。
func NewRoomSweepScheduledTask() *asynq.Task {
	return asynq.NewTask(TypeRoomSweepScheduled, nil)
}

// NewRoomSweepAloneTask 创建一次独处超时清扫任务。
func NewRoomSweepAloneTask() *asynq.Task {
	return asynq.NewTask(TypeRoomSweepAlone, nil)
}
