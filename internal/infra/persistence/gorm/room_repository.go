package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/damins0406/Let-s-Study-Now/internal/domain"
	"github.com/damins0406/Let-s-Study-Now/internal/repository"
)

// GormRoomRepository 是 RoomRepository 接口的 GORM 实现。
// 所有计数/状态变更都编译成带条件的单条 UPDATE 语句，由数据库保证原子性，
// RowsAffected 告知调用方转换是否真的发生。
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository 创建 GormRoomRepository 实例
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	if db == nil {
		panic("database connection cannot be nil for GormRoomRepository")
	}
	return &GormRoomRepository{db: db}
}

var _ repository.RoomRepository = (*GormRoomRepository)(nil)

// Save 实现保存房间信息（创建或更新）
func (r *GormRoomRepository) Save(ctx context.Context, room *domain.Room) error {
	err := r.db.WithContext(ctx).Save(room).Error
	if err != nil {
		if isDuplicateEntry(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save room (id: %d): %w", room.ID, err)
	}
	return nil
}

// FindByID 实现根据房间 ID 查找房间
func (r *GormRoomRepository) FindByID(ctx context.Context, id uint) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).First(&room, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by id %d: %w", id, err)
	}
	return &room, nil
}

// FindByStatusIn 实现按状态集合查询房间列表（创建时间倒序）
func (r *GormRoomRepository) FindByStatusIn(ctx context.Context, statuses []domain.RoomStatus) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find rooms by status: %w", err)
	}
	return rooms, nil
}

// FindExpiredScheduled 实现查询预约删除时间已过的房间
func (r *GormRoomRepository) FindExpiredScheduled(ctx context.Context, now time.Time) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.WithContext(ctx).
		Where("status = ? AND delete_scheduled_at IS NOT NULL AND delete_scheduled_at <= ?",
			domain.RoomStatusPendingDelete, now).
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find expired scheduled rooms: %w", err)
	}
	return rooms, nil
}

// FindExpiredAlone 实现查询创建者独处超时的房间
func (r *GormRoomRepository) FindExpiredAlone(ctx context.Context, cutoff time.Time) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.WithContext(ctx).
		Where("status = ? AND current_participants = 1 AND alone_timer_started_at IS NOT NULL AND alone_timer_started_at <= ?",
			domain.RoomStatusActive, cutoff).
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find expired alone rooms: %w", err)
	}
	return rooms, nil
}

// TryIncrementParticipants 实现条件化的人数 +1。
// WHERE 子句把"ACTIVE 且未满员"的检查和自增并入同一条语句，
// 并发加入不可能把人数推过上限。
func (r *GormRoomRepository) TryIncrementParticipants(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ? AND status = ? AND current_participants < max_participants",
			id, domain.RoomStatusActive).
		UpdateColumn("current_participants", gorm.Expr("current_participants + 1"))
	if res.Error != nil {
		return false, fmt.Errorf("gorm: increment participants of room %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// TryDecrementParticipants 实现条件化的人数 -1
func (r *GormRoomRepository) TryDecrementParticipants(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ? AND status <> ? AND current_participants > 0",
			id, domain.RoomStatusDeleted).
		UpdateColumn("current_participants", gorm.Expr("current_participants - 1"))
	if res.Error != nil {
		return false, fmt.Errorf("gorm: decrement participants of room %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ClearAloneTimer 实现清除独处计时（仅当房间已有 2 人及以上）
func (r *GormRoomRepository) ClearAloneTimer(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ? AND current_participants >= 2", id).
		Update("alone_timer_started_at", nil).Error
	if err != nil {
		return fmt.Errorf("gorm: clear alone timer of room %d: %w", id, err)
	}
	return nil
}

// ScheduleDelete 实现预约删除
func (r *GormRoomRepository) ScheduleDelete(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ? AND status <> ?", id, domain.RoomStatusDeleted).
		Updates(map[string]interface{}{
			"status":                 domain.RoomStatusPendingDelete,
			"delete_scheduled_at":    at,
			"alone_timer_started_at": nil,
		})
	if res.Error != nil {
		return false, fmt.Errorf("gorm: schedule delete of room %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// MarkDeleted 实现软删除。已 DELETED 的房间不匹配 WHERE 条件，
// 重复调用是无副作用的空操作。
func (r *GormRoomRepository) MarkDeleted(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ? AND status <> ?", id, domain.RoomStatusDeleted).
		Updates(map[string]interface{}{
			"status":                 domain.RoomStatusDeleted,
			"current_participants":   0,
			"alone_timer_started_at": nil,
			"delete_scheduled_at":    nil,
		})
	if res.Error != nil {
		return false, fmt.Errorf("gorm: mark room %d deleted: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// MarkDeletedIfAlone 实现带再校验的软删除。
// 查询到动作之间第二人可能已加入，WHERE 子句重查全部独处条件。
func (r *GormRoomRepository) MarkDeletedIfAlone(ctx context.Context, id uint, cutoff time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ? AND status = ? AND current_participants = 1 AND alone_timer_started_at IS NOT NULL AND alone_timer_started_at <= ?",
			id, domain.RoomStatusActive, cutoff).
		Updates(map[string]interface{}{
			"status":                 domain.RoomStatusDeleted,
			"current_participants":   0,
			"alone_timer_started_at": nil,
			"delete_scheduled_at":    nil,
		})
	if res.Error != nil {
		return false, fmt.Errorf("gorm: mark alone room %d deleted: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}
