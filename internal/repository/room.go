package repository

import (
	"context"
	"time"

	"github.com/damins0406/Let-s-Study-Now/internal/domain"
)

// RoomRepository 定义了房间数据的存储和检索操作。
//
// 计数与状态的变更方法都是条件化的单语句更新：条件不满足时返回 false
// 而不是报错。并发下"先读后写"的竞态窗口由数据库原子更新关闭，
// 调用方只根据返回值判断转换是否真的发生。
type RoomRepository interface {
	// Save 保存房间信息。新房间创建后回填 ID。
	Save(ctx context.Context, room *domain.Room) error

	// FindByID 根据房间 ID 查找房间。不存在时返回 ErrRoomNotFound。
	FindByID(ctx context.Context, id uint) (*domain.Room, error)

	// FindByStatusIn 按状态集合查询房间列表，创建时间倒序。
	FindByStatusIn(ctx context.Context, statuses []domain.RoomStatus) ([]domain.Room, error)

	// FindExpiredScheduled 查询 PENDING_DELETE 且预约删除时间 <= now 的房间。
	FindExpiredScheduled(ctx context.Context, now time.Time) ([]domain.Room, error)

	// FindExpiredAlone 查询 ACTIVE、1 人、独处计时起点 <= cutoff 的房间。
	FindExpiredAlone(ctx context.Context, cutoff time.Time) ([]domain.Room, error)

	// TryIncrementParticipants 原子地把人数 +1。
	// 仅当房间为 ACTIVE 且未满员时生效；返回是否生效。
	TryIncrementParticipants(ctx context.Context, id uint) (bool, error)

	// TryDecrementParticipants 原子地把人数 -1。
	// 仅当房间未被删除且人数 > 0 时生效；返回是否生效。
	TryDecrementParticipants(ctx context.Context, id uint) (bool, error)

	// ClearAloneTimer 清除独处计时。仅当人数 >= 2 时生效（防止并发加入
	// 后又退出的房间被误清）。
	ClearAloneTimer(ctx context.Context, id uint) error

	// ScheduleDelete 预约删除：状态置为 PENDING_DELETE、记录删除时间、
	// 清除独处计时。对已 DELETED 的房间不生效；返回是否生效。
	ScheduleDelete(ctx context.Context, id uint, at time.Time) (bool, error)

	// MarkDeleted 软删除：状态置为 DELETED、人数清零、两个计时字段清空。
	// 对已 DELETED 的房间是幂等的空操作；返回是否本次发生了转换。
	MarkDeleted(ctx context.Context, id uint) (bool, error)

	// MarkDeletedIfAlone 仅当房间仍为 ACTIVE、仍是 1 人、且独处计时起点
	// <= cutoff 时执行软删除。清扫任务的查询与动作之间窗口无界，
	// 动作必须自带再校验。返回是否本次发生了转换。
	MarkDeletedIfAlone(ctx context.Context, id uint, cutoff time.Time) (bool, error)
}
