package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/damins0406/Let-s-Study-Now/internal/domain"
	"github.com/damins0406/Let-s-Study-Now/internal/repository"
)

// RoomGracePeriod 是独处计时和预约删除共用的宽限期。
const RoomGracePeriod = 5 * time.Minute

// 房间规格的校验边界
const (
	minRoomCapacity = 2
	maxRoomCapacity = 10
	maxTitleLength  = 30
	maxDescLength   = 200
)

// Clock 返回当前时间。测试中注入固定时钟以验证区间结算。
type Clock func() time.Time

// RoomCreateSpec 是创建房间的输入规格。
type RoomCreateSpec struct {
	Title           string
	Description     string
	StudyField      string
	MaxParticipants int
}

// RoomService 负责开放自习房间的生命周期：创建、加入/退出、
// 独处计时、预约删除与软删除。同时承担"一人一房"守卫。
type RoomService struct {
	roomRepo        repository.RoomRepository
	participantRepo repository.ParticipantRepository
	now             Clock
}

// NewRoomService 创建 RoomService 实例。clock 传 nil 时使用系统时钟。
func NewRoomService(roomRepo repository.RoomRepository, participantRepo repository.ParticipantRepository, clock Clock) *RoomService {
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for RoomService")
	}
	if participantRepo == nil {
		panic("ParticipantRepository cannot be nil for RoomService")
	}
	if clock == nil {
		clock = time.Now
	}
	return &RoomService{
		roomRepo:        roomRepo,
		participantRepo: participantRepo,
		now:             clock,
	}
}

// CreateRoom 创建一个新的开放自习房间。
// 创建者自动成为第一个参与者，独处计时同时启动：宽限期内没有第二人
// 加入的话，清扫任务会删除这个房间。
func (s *RoomService) CreateRoom(ctx context.Context, spec RoomCreateSpec, creatorID uint) (*domain.Room, error) {
	logCtx := logrus.WithFields(logrus.Fields{"creator_id": creatorID, "title": spec.Title})

	if err := validateRoomSpec(spec); err != nil {
		logCtx.WithError(err).Warn("CreateRoom: Invalid room spec")
		return nil, err
	}

	// "一人一房"守卫：已参与 ACTIVE / PENDING_DELETE 房间则不能再建
	inRoom, err := s.participantRepo.ExistsActiveByMemberID(ctx, creatorID)
	if err != nil {
		logCtx.WithError(err).Error("CreateRoom: Failed to check active participation")
		return nil, ErrInternalServer
	}
	if inRoom {
		logCtx.Warn("CreateRoom: Creator already participates in an active room")
		return nil, ErrAlreadyInRoom
	}

	now := s.now()
	room := &domain.Room{
		Title:               spec.Title,
		Description:         spec.Description,
		StudyField:          spec.StudyField,
		MaxParticipants:     spec.MaxParticipants,
		CurrentParticipants: 1,
		CreatorID:           creatorID,
		Status:              domain.RoomStatusActive,
		AloneTimerStartedAt: &now,
	}
	if err := s.roomRepo.Save(ctx, room); err != nil {
		logCtx.WithError(err).Error("CreateRoom: Failed to save new room")
		return nil, ErrInternalServer
	}
	logCtx = logCtx.WithField("room_id", room.ID)

	participant := &domain.RoomParticipant{RoomID: room.ID, MemberID: creatorID}
	if err := s.participantRepo.Save(ctx, participant); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			// 并发创建在守卫之后落库之前插了队
			logCtx.WithError(err).Warn("CreateRoom: Creator joined another room concurrently")
			return nil, ErrAlreadyInRoom
		}
		logCtx.WithError(err).Error("CreateRoom: Failed to save creator participation")
		return nil, ErrInternalServer
	}

	logCtx.WithField("alone_timer_started_at", now).Info("Room created")
	return room, nil
}

// GetRoomList 返回 ACTIVE 和 PENDING_DELETE 状态的房间（创建时间倒序）。
// 删除预约中的房间依然可见，让成员能看到即将消失的房间。
func (s *RoomService) GetRoomList(ctx context.Context) ([]domain.Room, error) {
	rooms, err := s.roomRepo.FindByStatusIn(ctx,
		[]domain.RoomStatus{domain.RoomStatusActive, domain.RoomStatusPendingDelete})
	if err != nil {
		logrus.WithError(err).Error("GetRoomList: Repository error")
		return nil, ErrInternalServer
	}
	return rooms, nil
}

// GetRoomByID 返回房间详情。软删除的房间视为不存在。
func (s *RoomService) GetRoomByID(ctx context.Context, roomID uint) (*domain.Room, error) {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		logrus.WithError(err).WithField("room_id", roomID).Error("GetRoomByID: Repository error")
		return nil, ErrInternalServer
	}
	if room.Status == domain.RoomStatusDeleted {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// JoinRoom 处理会员加入房间。
//
// 前置检查按序执行：一人一房 → 房间存在 → 非删除预约中 → 未被删除 →
// 未满员 → 未重复参与。检查之后的"插参与行 + 人数 +1"不再信任读到的
// 快照：人数自增是带条件的原子更新，参与行靠唯一约束兜底，
// 并发加入不可能把房间推过上限。
//
// 删除预约中 (PENDING_DELETE) 的房间对新加入永久关闭，预约不可被
// 加入取消。
func (s *RoomService) JoinRoom(ctx context.Context, roomID, memberID uint) (*domain.Room, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "member_id": memberID})

	inRoom, err := s.participantRepo.ExistsActiveByMemberID(ctx, memberID)
	if err != nil {
		logCtx.WithError(err).Error("JoinRoom: Failed to check active participation")
		return nil, ErrInternalServer
	}
	if inRoom {
		logCtx.Warn("JoinRoom: Member already participates in an active room")
		return nil, ErrAlreadyInRoom
	}

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			logCtx.Warn("JoinRoom: Room not found")
			return nil, ErrRoomNotFound
		}
		logCtx.WithError(err).Error("JoinRoom: Repository error")
		return nil, ErrInternalServer
	}
	if room.Status == domain.RoomStatusPendingDelete {
		logCtx.Warn("JoinRoom: Room is pending deletion")
		return nil, ErrRoomDeleting
	}
	if room.Status == domain.RoomStatusDeleted {
		logCtx.Warn("JoinRoom: Room already deleted")
		return nil, ErrRoomNotFound
	}
	if room.IsFull() {
		logCtx.Warn("JoinRoom: Room is full")
		return nil, ErrRoomFull
	}

	// 原子自增：ACTIVE 且未满员才生效。失败时重读房间归因。
	joined, err := s.roomRepo.TryIncrementParticipants(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("JoinRoom: Failed to increment participants")
		return nil, ErrInternalServer
	}
	if !joined {
		return nil, s.classifyJoinRejection(ctx, roomID, logCtx)
	}

	participant := &domain.RoomParticipant{RoomID: roomID, MemberID: memberID}
	if err := s.participantRepo.Save(ctx, participant); err != nil {
		// 自增已生效但参与行没插进去，补偿回滚人数
		if _, decErr := s.roomRepo.TryDecrementParticipants(ctx, roomID); decErr != nil {
			logCtx.WithError(decErr).Error("JoinRoom: Failed to compensate participant count")
		}
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.Warn("JoinRoom: Duplicate participation rejected by unique constraint")
			return nil, ErrAlreadyInRoom
		}
		logCtx.WithError(err).Error("JoinRoom: Failed to save participant")
		return nil, ErrInternalServer
	}

	room, err = s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("JoinRoom: Failed to reload room after join")
		return nil, ErrInternalServer
	}

	// 到 2 人时取消创建者独处计时（房间不再会被独处清扫删除）。
	// 人数单步变化，等值判断足够；清除本身是条件化的幂等更新。
	if room.CurrentParticipants == 2 {
		if err := s.roomRepo.ClearAloneTimer(ctx, roomID); err != nil {
			logCtx.WithError(err).Error("JoinRoom: Failed to clear alone timer")
		} else {
			logCtx.Info("JoinRoom: Alone timer cleared")
			room.AloneTimerStartedAt = nil
		}
	}

	logCtx.WithFields(logrus.Fields{
		"current_participants": room.CurrentParticipants,
		"max_participants":     room.MaxParticipants,
	}).Info("Member joined room")
	return room, nil
}

// classifyJoinRejection 在原子自增未生效时重读房间，把失败归因为
// 具体的业务错误。
func (s *RoomService) classifyJoinRejection(ctx context.Context, roomID uint, logCtx *logrus.Entry) error {
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		logCtx.WithError(err).Error("JoinRoom: Failed to reload room after rejected increment")
		return ErrInternalServer
	}
	switch {
	case room.Status == domain.RoomStatusDeleted:
		logCtx.Warn("JoinRoom: Room deleted concurrently")
		return ErrRoomNotFound
	case room.Status == domain.RoomStatusPendingDelete:
		logCtx.Warn("JoinRoom: Room scheduled for deletion concurrently")
		return ErrRoomDeleting
	case room.IsFull():
		logCtx.Warn("JoinRoom: Room filled up concurrently")
		return ErrRoomFull
	default:
		logCtx.Error("JoinRoom: Increment rejected for unknown reason")
		return ErrInternalServer
	}
}

// LeaveRoom 处理会员退出房间。
// 退出后剩 1 人或 0 人时预约删除：宽限期后由清扫任务软删除。
func (s *RoomService) LeaveRoom(ctx context.Context, roomID, memberID uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "member_id": memberID})

	participant, err := s.participantRepo.FindByRoomIDAndMemberID(ctx, roomID, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			logCtx.Warn("LeaveRoom: Member is not a participant of this room")
			return ErrNotParticipant
		}
		logCtx.WithError(err).Error("LeaveRoom: Repository error")
		return ErrInternalServer
	}

	if err := s.participantRepo.Delete(ctx, participant); err != nil {
		logCtx.WithError(err).Error("LeaveRoom: Failed to delete participant")
		return ErrInternalServer
	}
	decremented, err := s.roomRepo.TryDecrementParticipants(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("LeaveRoom: Failed to decrement participants")
		return ErrInternalServer
	}
	if !decremented {
		// 房间已被并发软删除，参与行也已被清扫移除，退出视为完成
		logCtx.Warn("LeaveRoom: Room no longer accepts count changes")
		return nil
	}

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("LeaveRoom: Failed to reload room after leave")
		return ErrInternalServer
	}
	logCtx = logCtx.WithField("remaining_participants", room.CurrentParticipants)

	// 剩 1 人或空房：预约删除。已在预约中的房间从最近一次退出重新计时。
	if room.CurrentParticipants == 1 || room.CurrentParticipants == 0 {
		deleteAt := s.now().Add(RoomGracePeriod)
		scheduled, err := s.roomRepo.ScheduleDelete(ctx, roomID, deleteAt)
		if err != nil {
			logCtx.WithError(err).Error("LeaveRoom: Failed to schedule room deletion")
			return ErrInternalServer
		}
		if scheduled {
			logCtx.WithField("delete_scheduled_at", deleteAt).Info("Room deletion scheduled")
		}
	}

	logCtx.Info("Member left room")
	return nil
}

// DeleteRoom 软删除房间：清空参与行、人数清零、状态置为 DELETED。
// 幂等：房间不存在或已删除时直接视为成功，请求驱动的删除和清扫任务
// 可以并发调用同一条路径。返回被清出的会员 ID，调用方据此结算他们的
// 个人计时器。
func (s *RoomService) DeleteRoom(ctx context.Context, roomID uint) ([]uint, error) {
	logCtx := logrus.WithField("room_id", roomID)

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, nil
		}
		logCtx.WithError(err).Error("DeleteRoom: Repository error")
		return nil, ErrInternalServer
	}
	if room.Status == domain.RoomStatusDeleted {
		return nil, nil
	}

	deleted, err := s.roomRepo.MarkDeleted(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("DeleteRoom: Failed to mark room deleted")
		return nil, ErrInternalServer
	}
	if !deleted {
		// 并发调用抢先完成了删除
		return nil, nil
	}

	memberIDs, err := s.purgeParticipants(ctx, roomID, logCtx)
	if err != nil {
		return nil, err
	}

	logCtx.WithFields(logrus.Fields{
		"title":          room.Title,
		"purged_members": len(memberIDs),
	}).Info("Room deleted")
	return memberIDs, nil
}

// DeleteAloneRoom 删除创建者始终独处的房间。
// 效果与 DeleteRoom 相同，专用于"独处超时"路径：状态置换自带全部
// 独处条件的再校验，查询到动作之间有人加入的话转换不会发生。
// reason 仅用于日志审计。
func (s *RoomService) DeleteAloneRoom(ctx context.Context, roomID uint, reason string) ([]uint, error) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "reason": reason})

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, nil
		}
		logCtx.WithError(err).Error("DeleteAloneRoom: Repository error")
		return nil, ErrInternalServer
	}
	if room.Status != domain.RoomStatusActive || room.CurrentParticipants != 1 {
		// 第二人已加入或房间已转换状态，放过
		return nil, nil
	}

	cutoff := s.now().Add(-RoomGracePeriod)
	deleted, err := s.roomRepo.MarkDeletedIfAlone(ctx, roomID, cutoff)
	if err != nil {
		logCtx.WithError(err).Error("DeleteAloneRoom: Failed to mark room deleted")
		return nil, ErrInternalServer
	}
	if !deleted {
		return nil, nil
	}

	memberIDs, err := s.purgeParticipants(ctx, roomID, logCtx)
	if err != nil {
		return nil, err
	}

	logCtx.WithField("title", room.Title).Info("Alone room deleted")
	return memberIDs, nil
}

// purgeParticipants 收集并清空房间的参与行。状态已置 DELETED，
// 新加入不可能再进来，先读后删没有窗口。
func (s *RoomService) purgeParticipants(ctx context.Context, roomID uint, logCtx *logrus.Entry) ([]uint, error) {
	memberIDs, err := s.participantRepo.MemberIDsByRoomID(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("DeleteRoom: Failed to list participants before purge")
		return nil, ErrInternalServer
	}
	if err := s.participantRepo.DeleteByRoomID(ctx, roomID); err != nil {
		logCtx.WithError(err).Error("DeleteRoom: Failed to purge participants")
		return nil, ErrInternalServer
	}
	return memberIDs, nil
}

// GetRoomsToDelete 返回预约删除时间已到的房间，供清扫任务调用。
func (s *RoomService) GetRoomsToDelete(ctx context.Context) ([]domain.Room, error) {
	rooms, err := s.roomRepo.FindExpiredScheduled(ctx, s.now())
	if err != nil {
		logrus.WithError(err).Error("GetRoomsToDelete: Repository error")
		return nil, ErrInternalServer
	}
	return rooms, nil
}

// GetAloneRoomsExpired 返回创建者独处已超过宽限期的房间，供清扫任务调用。
func (s *RoomService) GetAloneRoomsExpired(ctx context.Context) ([]domain.Room, error) {
	rooms, err := s.roomRepo.FindExpiredAlone(ctx, s.now().Add(-RoomGracePeriod))
	if err != nil {
		logrus.WithError(err).Error("GetAloneRoomsExpired: Repository error")
		return nil, ErrInternalServer
	}
	return rooms, nil
}

// validateRoomSpec 校验房间规格：标题 1~30 字符、学习领域必填、
// 人数上限 2~10、说明不超过 200 字符。
func validateRoomSpec(spec RoomCreateSpec) error {
	titleLen := utf8.RuneCountInString(spec.Title)
	if titleLen < 1 || titleLen > maxTitleLength {
		return ErrInvalidRoomSpec
	}
	if spec.StudyField == "" {
		return ErrInvalidRoomSpec
	}
	if spec.MaxParticipants < minRoomCapacity || spec.MaxParticipants > maxRoomCapacity {
		return ErrInvalidRoomSpec
	}
	if utf8.RuneCountInString(spec.Description) > maxDescLength {
		return ErrInvalidRoomSpec
	}
	return nil
}
