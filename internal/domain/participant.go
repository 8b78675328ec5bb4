package domain

import "time"

// RoomParticipant 表示某会员在某房间的参与关系。
// (room_id, member_id) 唯一约束防止同一会员重复加入同一房间；
// 行的增删始终与所属 Room 的 current_participants 同步变化。
type RoomParticipant struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	RoomID   uint      `gorm:"uniqueIndex:idx_room_member;not null" json:"roomId"`
	MemberID uint      `gorm:"uniqueIndex:idx_room_member;index;not null" json:"memberId"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joinedAt"`
}
