package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/damins0406/Let-s-Study-Now/internal/domain"
	"github.com/damins0406/Let-s-Study-Now/internal/repository"
)

// GormParticipantRepository 是 ParticipantRepository 接口的 GORM 实现
type GormParticipantRepository struct {
	db *gorm.DB
}

// NewGormParticipantRepository 创建 GormParticipantRepository 实例
func NewGormParticipantRepository(db *gorm.DB) *GormParticipantRepository {
	if db == nil {
		panic("database connection cannot be nil for GormParticipantRepository")
	}
	return &GormParticipantRepository{db: db}
}

var _ repository.ParticipantRepository = (*GormParticipantRepository)(nil)

// Save 实现插入参与者行。(room_id, member_id) 唯一约束冲突映射为
// ErrDuplicateEntry，并发重复加入由数据库兜底。
func (r *GormParticipantRepository) Save(ctx context.Context, participant *domain.RoomParticipant) error {
	err := r.db.WithContext(ctx).Create(participant).Error
	if err != nil {
		if isDuplicateEntry(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save participant (room: %d, member: %d): %w",
			participant.RoomID, participant.MemberID, err)
	}
	return nil
}

// FindByRoomIDAndMemberID 实现查找参与行
func (r *GormParticipantRepository) FindByRoomIDAndMemberID(ctx context.Context, roomID, memberID uint) (*domain.RoomParticipant, error) {
	var participant domain.RoomParticipant
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND member_id = ?", roomID, memberID).
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("gorm: find participant (room: %d, member: %d): %w", roomID, memberID, err)
	}
	return &participant, nil
}

// ExistsActiveByMemberID 实现"一人一房"检查：
// 参与行与 rooms 表联查，只统计 ACTIVE / PENDING_DELETE 状态的房间。
func (r *GormParticipantRepository) ExistsActiveByMemberID(ctx context.Context, memberID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.RoomParticipant{}).
		Joins("JOIN rooms ON rooms.id = room_participants.room_id").
		Where("room_participants.member_id = ? AND rooms.status IN ?",
			memberID, []domain.RoomStatus{domain.RoomStatusActive, domain.RoomStatusPendingDelete}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count active participations of member %d: %w", memberID, err)
	}
	return count > 0, nil
}

// MemberIDsByRoomID 实现返回房间全部参与者的会员 ID
func (r *GormParticipantRepository) MemberIDsByRoomID(ctx context.Context, roomID uint) ([]uint, error) {
	var memberIDs []uint
	err := r.db.WithContext(ctx).Model(&domain.RoomParticipant{}).
		Where("room_id = ?", roomID).
		Pluck("member_id", &memberIDs).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list member ids of room %d: %w", roomID, err)
	}
	return memberIDs, nil
}

// CountByRoomID 实现统计房间参与行数
func (r *GormParticipantRepository) CountByRoomID(ctx context.Context, roomID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.RoomParticipant{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: count participants of room %d: %w", roomID, err)
	}
	return count, nil
}

// Delete 实现删除一条参与行
func (r *GormParticipantRepository) Delete(ctx context.Context, participant *domain.RoomParticipant) error {
	err := r.db.WithContext(ctx).Delete(participant).Error
	if err != nil {
		return fmt.Errorf("gorm: delete participant %d: %w", participant.ID, err)
	}
	return nil
}

// DeleteByRoomID 实现删除房间的全部参与行（没有匹配行时也是成功）
func (r *GormParticipantRepository) DeleteByRoomID(ctx context.Context, roomID uint) error {
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Delete(&domain.RoomParticipant{}).Error
	if err != nil {
		return fmt.Errorf("gorm: delete participants of room %d: %w", roomID, err)
	}
	return nil
}
