// Package mocks 提供 repository 接口的 testify mock 实现，供单元测试使用。
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/damins0406/Let-s-Study-Now/internal/domain"
)

// RoomRepository 是 repository.RoomRepository 接口的 Mock 实现
type RoomRepository struct {
	mock.Mock
}

func (m *RoomRepository) Save(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *RoomRepository) FindByID(ctx context.Context, id uint) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *RoomRepository) FindByStatusIn(ctx context.Context, statuses []domain.RoomStatus) ([]domain.Room, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Room), args.Error(1)
}

func (m *RoomRepository) FindExpiredScheduled(ctx context.Context, now time.Time) ([]domain.Room, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Room), args.Error(1)
}

func (m *RoomRepository) FindExpiredAlone(ctx context.Context, cutoff time.Time) ([]domain.Room, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Room), args.Error(1)
}

func (m *RoomRepository) TryIncrementParticipants(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepository) TryDecrementParticipants(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepository) ClearAloneTimer(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RoomRepository) ScheduleDelete(ctx context.Context, id uint, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepository) MarkDeleted(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepository) MarkDeletedIfAlone(ctx context.Context, id uint, cutoff time.Time) (bool, error) {
	args := m.Called(ctx, id, cutoff)
	return args.Bool(0), args.Error(1)
}

// ParticipantRepository 是 repository.ParticipantRepository 接口的 Mock 实现
type ParticipantRepository struct {
	mock.Mock
}

func (m *ParticipantRepository) Save(ctx context.Context, participant *domain.RoomParticipant) error {
	args := m.Called(ctx, participant)
	return args.Error(0)
}

func (m *ParticipantRepository) FindByRoomIDAndMemberID(ctx context.Context, roomID, memberID uint) (*domain.RoomParticipant, error) {
	args := m.Called(ctx, roomID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoomParticipant), args.Error(1)
}

func (m *ParticipantRepository) ExistsActiveByMemberID(ctx context.Context, memberID uint) (bool, error) {
	args := m.Called(ctx, memberID)
	return args.Bool(0), args.Error(1)
}

func (m *ParticipantRepository) MemberIDsByRoomID(ctx context.Context, roomID uint) ([]uint, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *ParticipantRepository) CountByRoomID(ctx context.Context, roomID uint) (int64, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ParticipantRepository) Delete(ctx context.Context, participant *domain.RoomParticipant) error {
	args := m.Called(ctx, participant)
	return args.Error(0)
}

func (m *ParticipantRepository) DeleteByRoomID(ctx context.Context, roomID uint) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

// PersonalTimerRepository 是 repository.PersonalTimerRepository 接口的 Mock 实现
type PersonalTimerRepository struct {
	mock.Mock
}

func (m *PersonalTimerRepository) Create(ctx context.Context, timer *domain.PersonalTimer) error {
	args := m.Called(ctx, timer)
	return args.Error(0)
}

func (m *PersonalTimerRepository) FindByMemberID(ctx context.Context, memberID uint) (*domain.PersonalTimer, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PersonalTimer), args.Error(1)
}

func (m *PersonalTimerRepository) Update(ctx context.Context, timer *domain.PersonalTimer) error {
	args := m.Called(ctx, timer)
	return args.Error(0)
}

func (m *PersonalTimerRepository) Delete(ctx context.Context, timer *domain.PersonalTimer) error {
	args := m.Called(ctx, timer)
	return args.Error(0)
}

// PomodoroSettingRepository 是 repository.PomodoroSettingRepository 接口的 Mock 实现
type PomodoroSettingRepository struct {
	mock.Mock
}

func (m *PomodoroSettingRepository) ExistsByMemberID(ctx context.Context, memberID uint) (bool, error) {
	args := m.Called(ctx, memberID)
	return args.Bool(0), args.Error(1)
}

func (m *PomodoroSettingRepository) FindByMemberID(ctx context.Context, memberID uint) (*domain.PomodoroSetting, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PomodoroSetting), args.Error(1)
}

func (m *PomodoroSettingRepository) Upsert(ctx context.Context, setting *domain.PomodoroSetting) error {
	args := m.Called(ctx, setting)
	return args.Error(0)
}

// StudyHistoryRepository 是 repository.StudyHistoryRepository 接口的 Mock 实现
type StudyHistoryRepository struct {
	mock.Mock
}

func (m *StudyHistoryRepository) AddStudySeconds(ctx context.Context, memberID uint, date string, seconds int64) error {
	args := m.Called(ctx, memberID, date, seconds)
	return args.Error(0)
}

func (m *StudyHistoryRepository) FindByMemberIDAndDate(ctx context.Context, memberID uint, date string) (*domain.StudyHistory, error) {
	args := m.Called(ctx, memberID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudyHistory), args.Error(1)
}

func (m *StudyHistoryRepository) TotalStudySeconds(ctx context.Context, memberID uint) (int64, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int64), args.Error(1)
}
