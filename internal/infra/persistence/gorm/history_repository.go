package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/damins0406/Let-s-Study-Now/internal/domain"
	"github.com/damins0406/Let-s-Study-Now/internal/repository"
)

// GormStudyHistoryRepository 是 StudyHistoryRepository 接口的 GORM 实现
type GormStudyHistoryRepository struct {
	db *gorm.DB
}

// NewGormStudyHistoryRepository 创建 GormStudyHistoryRepository 实例
func NewGormStudyHistoryRepository(db *gorm.DB) *GormStudyHistoryRepository {
	if db == nil {
		panic("database connection cannot be nil for GormStudyHistoryRepository")
	}
	return &GormStudyHistoryRepository{db: db}
}

var _ repository.StudyHistoryRepository = (*GormStudyHistoryRepository)(nil)

// AddStudySeconds 实现按天累加学习秒数。
// 单条 INSERT ... ON DUPLICATE KEY UPDATE，并发落账不会丢失增量。
func (r *GormStudyHistoryRepository) AddStudySeconds(ctx context.Context, memberID uint, date string, seconds int64) error {
	history := domain.StudyHistory{
		MemberID:          memberID,
		StudyDate:         date,
		TotalStudySeconds: seconds,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "member_id"}, {Name: "study_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_study_seconds": gorm.Expr("total_study_seconds + ?", seconds),
		}),
	}).Create(&history).Error
	if err != nil {
		return fmt.Errorf("gorm: add %d study seconds for member %d on %s: %w", seconds, memberID, date, err)
	}
	return nil
}

// FindByMemberIDAndDate 实现查找某会员某天的累计行
func (r *GormStudyHistoryRepository) FindByMemberIDAndDate(ctx context.Context, memberID uint, date string) (*domain.StudyHistory, error) {
	var history domain.StudyHistory
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND study_date = ?", memberID, date).
		First(&history).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrHistoryNotFound
		}
		return nil, fmt.Errorf("gorm: find study history (member: %d, date: %s): %w", memberID, date, err)
	}
	return &history, nil
}

// TotalStudySeconds 实现终身累计查询（没有任何记录时返回 0）
func (r *GormStudyHistoryRepository) TotalStudySeconds(ctx context.Context, memberID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.StudyHistory{}).
		Where("member_id = ?", memberID).
		Select("COALESCE(SUM(total_study_seconds), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: sum study seconds of member %d: %w", memberID, err)
	}
	return total, nil
}
