package repository

import (
	"context"

	"github.com/damins0406/Let-s-Study-Now/internal/domain"
)

// StudyHistoryRepository 定义了每日学习时长累计的存储操作。
type StudyHistoryRepository interface {
	// AddStudySeconds 把 seconds 累加到 (memberID, date) 对应的行上，
	// 行不存在时创建。单条语句的 upsert，并发落账不会互相覆盖。
	AddStudySeconds(ctx context.Context, memberID uint, date string, seconds int64) error

	// FindByMemberIDAndDate 查找某会员某天的累计行。
	// 不存在时返回 ErrHistoryNotFound。
	FindByMemberIDAndDate(ctx context.Context, memberID uint, date string) (*domain.StudyHistory, error)

	// TotalStudySeconds 返回会员的终身累计学习秒数（没有记录时为 0）。
	TotalStudySeconds(ctx context.Context, memberID uint) (int64, error)
}
