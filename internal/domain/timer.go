package domain

import "time"

// TimerMode 表示个人计时器的运行模式。
type TimerMode string

const (
	TimerModeBasic    TimerMode = "BASIC"    // 基本模式：手动切换学习/休息
	TimerModePomodoro TimerMode = "POMODORO" // 番茄钟模式：按设定的间隔自动切换
)

// TimerStatus 表示当前处于学习区间还是休息区间。
type TimerStatus string

const (
	TimerStatusStudying TimerStatus = "STUDYING"
	TimerStatusResting  TimerStatus = "RESTING"
)

// PersonalTimer 表示一个会员当前活跃的计时会话。
// member_id 上的唯一索引是"一人同时只有一个计时器"的强制手段：
// 重复插入由数据库唯一约束拒绝，而不是应用层先查再插。
// 会话结束（退出房间）时累计学习秒数落入 StudyHistory 后整行删除。
type PersonalTimer struct {
	ID                  uint        `gorm:"primaryKey" json:"id"`
	MemberID            uint        `gorm:"uniqueIndex;not null" json:"memberId"`
	RoomID              uint        `gorm:"index;not null" json:"roomId"`
	Mode                TimerMode   `gorm:"size:20;not null" json:"mode"`
	Status              TimerStatus `gorm:"size:20;not null" json:"status"`
	TotalStudySeconds   int64       `gorm:"not null" json:"totalStudySeconds"`   // 本次会话已累计的学习秒数
	LastStatusChangedAt time.Time   `gorm:"not null" json:"lastStatusChangedAt"` // 当前区间的起点
	CreatedAt           time.Time   `gorm:"autoCreateTime" json:"createdAt"`
}

// CloseInterval 结算当前区间：处于学习状态时把经过秒数计入累计值，
// 并把区间起点移到 now。休息区间不累计。
func (t *PersonalTimer) CloseInterval(now time.Time) {
	if t.Status == TimerStatusStudying {
		elapsed := int64(now.Sub(t.LastStatusChangedAt).Seconds())
		if elapsed > 0 {
			t.TotalStudySeconds += elapsed
		}
	}
	t.LastStatusChangedAt = now
}

// FlipStatus 结算当前区间并翻转学习/休息状态。
func (t *PersonalTimer) FlipStatus(now time.Time) {
	t.CloseInterval(now)
	if t.Status == TimerStatusStudying {
		t.Status = TimerStatusResting
	} else {
		t.Status = TimerStatusStudying
	}
}

// ChangeStatus 结算当前区间并把状态置为 newStatus。
// 番茄钟区间边界到达时由客户端显式调用。
func (t *PersonalTimer) ChangeStatus(newStatus TimerStatus, now time.Time) {
	t.CloseInterval(now)
	t.Status = newStatus
}

// PomodoroSetting 表示会员的番茄钟间隔设置，一人一行。
// 进入番茄钟模式的前置条件（没有设置则拒绝切换）。
type PomodoroSetting struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MemberID     uint      `gorm:"uniqueIndex;not null" json:"memberId"`
	StudyMinutes int       `gorm:"not null" json:"studyMinutes"` // 学习区间时长 (分钟)
	BreakMinutes int       `gorm:"not null" json:"breakMinutes"` // 休息区间时长 (分钟)
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"-"`
}
