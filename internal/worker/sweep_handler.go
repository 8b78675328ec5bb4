package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/damins0406/Let-s-Study-Now/internal/domain"
	"github.com/damins0406/Let-s-Study-Now/internal/service"
	"github.com/damins0406/Let-s-Study-Now/internal/tasks"
)

// roomLifecycle 是清扫任务依赖的房间生命周期操作子集。
type roomLifecycle interface {
	GetRoomsToDelete(ctx context.Context) ([]domain.Room, error)
	GetAloneRoomsExpired(ctx context.Context) ([]domain.Room, error)
	DeleteRoom(ctx context.Context, roomID uint) ([]uint, error)
	DeleteAloneRoom(ctx context.Context, roomID uint, reason string) ([]uint, error)
}

// timerFinalizer 是清扫任务依赖的计时器结算操作子集。
type timerFinalizer interface {
	EndTimer(ctx context.Context, memberID uint) error
}

// RoomSweepHandler 处理两类房间清扫任务。
//
// 清扫是先查后动的修复循环：查询和动作之间的窗口无界，删除操作内部
// 自带状态再校验，整个过程可以任意频率重跑或跳过。单个房间的失败只
// 记日志，不中断本批其余房间。
type RoomSweepHandler struct {
	rooms  roomLifecycle
	timers timerFinalizer
}

// NewRoomSweepHandler 创建 Handler 实例
func NewRoomSweepHandler(rooms roomLifecycle, timers timerFinalizer) *RoomSweepHandler {
	if rooms == nil {
		panic("room lifecycle service cannot be nil for RoomSweepHandler")
	}
	if timers == nil {
		panic("timer service cannot be nil for RoomSweepHandler")
	}
	return &RoomSweepHandler{rooms: rooms, timers: timers}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *RoomSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	switch t.Type() {
	case tasks.TypeRoomSweepScheduled:
		return h.sweepScheduled(ctx)
	case tasks.TypeRoomSweepAlone:
		return h.sweepAlone(ctx)
	default:
		return fmt.Errorf("unexpected task type %q: %w", t.Type(), asynq.SkipRetry)
	}
}

// sweepScheduled 删除预约时间已到的 PENDING_DELETE 房间。
func (h *RoomSweepHandler) sweepScheduled(ctx context.Context) error {
	rooms, err := h.rooms.GetRoomsToDelete(ctx)
	if err != nil {
		logrus.WithError(err).Error("Sweep: Failed to query rooms with expired delete schedule")
		return err
	}
	if len(rooms) == 0 {
		return nil
	}

	logrus.WithField("count", len(rooms)).Info("Sweep: Deleting rooms with expired delete schedule")
	for _, room := range rooms {
		memberIDs, err := h.rooms.DeleteRoom(ctx, room.ID)
		if err != nil {
			// 单个房间失败不中断批次
			logrus.WithError(err).WithField("room_id", room.ID).Error("Sweep: Failed to delete scheduled room")
			continue
		}
		h.finalizeTimers(ctx, room.ID, memberIDs)
	}
	return nil
}

// sweepAlone 删除创建者独处超过宽限期的 ACTIVE 房间。
// 这条路径覆盖"建房后从未有人加入"的房间：它们从未走过退出逻辑，
// 因此不存在删除预约，只能靠独处计时发现。
func (h *RoomSweepHandler) sweepAlone(ctx context.Context) error {
	rooms, err := h.rooms.GetAloneRoomsExpired(ctx)
	if err != nil {
		logrus.WithError(err).Error("Sweep: Failed to query rooms with expired alone timer")
		return err
	}
	if len(rooms) == 0 {
		return nil
	}

	logrus.WithField("count", len(rooms)).Info("Sweep: Deleting rooms with expired alone timer")
	for _, room := range rooms {
		memberIDs, err := h.rooms.DeleteAloneRoom(ctx, room.ID, tasks.AloneRoomDeleteReason)
		if err != nil {
			logrus.WithError(err).WithField("room_id", room.ID).Error("Sweep: Failed to delete alone room")
			continue
		}
		h.finalizeTimers(ctx, room.ID, memberIDs)
	}
	return nil
}

// finalizeTimers 结算被清出房间的会员的个人计时器。
// 删除是一次被动退出：不结算的话 member_id 唯一约束会卡住该会员
// 之后的任何一次计时启动。计时器早已不存在时跳过。
func (h *RoomSweepHandler) finalizeTimers(ctx context.Context, roomID uint, memberIDs []uint) {
	for _, memberID := range memberIDs {
		err := h.timers.EndTimer(ctx, memberID)
		if err != nil && !errors.Is(err, service.ErrNoActiveTimer) {
			logrus.WithError(err).WithFields(logrus.Fields{
				"room_id":   roomID,
				"member_id": memberID,
			}).Error("Sweep: Failed to finalize timer of purged member")
		}
	}
}
