package repository

import (
	"context"

	"github.com/damins0406/Let-s-Study-Now/internal/domain"
)

// ParticipantRepository 定义了房间参与关系的存储操作。
// 参与者行只在所属房间人数变更的同一业务操作中增删。
type ParticipantRepository interface {
	// Save 插入参与者行。违反 (room_id, member_id) 唯一约束时返回
	// ErrDuplicateEntry。
	Save(ctx context.Context, participant *domain.RoomParticipant) error

	// FindByRoomIDAndMemberID 查找某会员在某房间的参与行。
	// 不存在时返回 ErrParticipantNotFound。
	FindByRoomIDAndMemberID(ctx context.Context, roomID, memberID uint) (*domain.RoomParticipant, error)

	// ExistsActiveByMemberID 判断会员是否已参与任一 ACTIVE 或
	// PENDING_DELETE 状态的房间（"一人一房"守卫）。
	ExistsActiveByMemberID(ctx context.Context, memberID uint) (bool, error)

	// MemberIDsByRoomID 返回房间当前所有参与者的会员 ID。
	MemberIDsByRoomID(ctx context.Context, roomID uint) ([]uint, error)

	// CountByRoomID 返回房间当前参与者行数。
	CountByRoomID(ctx context.Context, roomID uint) (int64, error)

	// Delete 删除一条参与行。
	Delete(ctx context.Context, participant *domain.RoomParticipant) error

	// DeleteByRoomID 删除房间的全部参与行（软删除房间时调用），幂等。
	DeleteByRoomID(ctx context.Context, roomID uint) error
}
