package domain

import "time"

// RoomStatus 表示房间的生命周期状态。
type RoomStatus string

const (
	RoomStatusActive        RoomStatus = "ACTIVE"         // 正常运营中
	RoomStatusPendingDelete RoomStatus = "PENDING_DELETE" // 已预约删除，到期后由清扫任务删除
	RoomStatusDeleted       RoomStatus = "DELETED"        // 软删除终态，不再参与任何状态转换
)

// Room 表示一个开放自习房间。
// 软删除：状态置为 DELETED，行永不物理删除（保留历史）。
type Room struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Title               string     `gorm:"size:30;not null" json:"title"`        // 房间标题 (1~30 字符)
	Description         string     `gorm:"size:200" json:"description"`          // 房间说明 (可选)
	StudyField          string     `gorm:"size:50;not null" json:"studyField"`   // 学习领域
	MaxParticipants     int        `gorm:"not null" json:"maxParticipants"`      // 最大人数 (2~10)
	CurrentParticipants int        `gorm:"not null" json:"currentParticipants"`  // 当前人数，与参与者行数保持一致
	CreatorID           uint       `gorm:"index;not null" json:"creatorId"`      // 创建者会员 ID
	Status              RoomStatus `gorm:"size:20;index;not null" json:"status"` // 状态 (清扫任务按状态扫描，添加索引)
	AloneTimerStartedAt *time.Time `json:"aloneTimerStartedAt"`                  // 创建者独处计时起点；仅在 ACTIVE 且 1 人时非空
	DeleteScheduledAt   *time.Time `json:"deleteScheduledAt"`                    // 预约删除时间；仅在 PENDING_DELETE 时非空
	CreatedAt           time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"-"`
}

// IsFull 判断房间是否已满员。
func (r *Room) IsFull() bool {
	return r.CurrentParticipants >= r.MaxParticipants
}
