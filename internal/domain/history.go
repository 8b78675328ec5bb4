package domain

import "time"

// StudyDateLayout 是 StudyHistory 按天聚合使用的日期格式。
const StudyDateLayout = "2006-01-02"

// StudyHistory 表示某会员某一天的累计学习秒数。
// (member_id, study_date) 唯一；首次落账时创建，之后只增不减，永久保留。
type StudyHistory struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	MemberID          uint      `gorm:"uniqueIndex:idx_member_date;not null" json:"memberId"`
	StudyDate         string    `gorm:"uniqueIndex:idx_member_date;size:10;not null" json:"studyDate"` // "2006-01-02"
	TotalStudySeconds int64     `gorm:"not null" json:"totalStudySeconds"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"-"`
}
