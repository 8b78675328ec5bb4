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

// GormPersonalTimerRepository 是 PersonalTimerRepository 接口的 GORM 实现
type GormPersonalTimerRepository struct {
	db *gorm.DB
}

// NewGormPersonalTimerRepository 创建 GormPersonalTimerRepository 实例
func NewGormPersonalTimerRepository(db *gorm.DB) *GormPersonalTimerRepository {
	if db == nil {
		panic("database connection cannot be nil for GormPersonalTimerRepository")
	}
	return &GormPersonalTimerRepository{db: db}
}

var _ repository.PersonalTimerRepository = (*GormPersonalTimerRepository)(nil)

// Create 实现插入计时器行。
// member_id 唯一索引冲突映射为 ErrDuplicateEntry，
// 同一会员的并发启动只有一个能成功。
func (r *GormPersonalTimerRepository) Create(ctx context.Context, timer *domain.PersonalTimer) error {
	err := r.db.WithContext(ctx).Create(timer).Error
	if err != nil {
		if isDuplicateEntry(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create personal timer for member %d: %w", timer.MemberID, err)
	}
	return nil
}

// FindByMemberID 实现查找会员的活跃计时器
func (r *GormPersonalTimerRepository) FindByMemberID(ctx context.Context, memberID uint) (*domain.PersonalTimer, error) {
	var timer domain.PersonalTimer
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		First(&timer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTimerNotFound
		}
		return nil, fmt.Errorf("gorm: find personal timer of member %d: %w", memberID, err)
	}
	return &timer, nil
}

// Update 实现保存计时器变更
func (r *GormPersonalTimerRepository) Update(ctx context.Context, timer *domain.PersonalTimer) error {
	err := r.db.WithContext(ctx).Save(timer).Error
	if err != nil {
		return fmt.Errorf("gorm: update personal timer %d: %w", timer.ID, err)
	}
	return nil
}

// Delete 实现删除计时器行
func (r *GormPersonalTimerRepository) Delete(ctx context.Context, timer *domain.PersonalTimer) error {
	err := r.db.WithContext(ctx).Delete(timer).Error
	if err != nil {
		return fmt.Errorf("gorm: delete personal timer %d: %w", timer.ID, err)
	}
	return nil
}

// GormPomodoroSettingRepository 是 PomodoroSettingRepository 接口的 GORM 实现
type GormPomodoroSettingRepository struct {
	db *gorm.DB
}

// NewGormPomodoroSettingRepository 创建 GormPomodoroSettingRepository 实例
func NewGormPomodoroSettingRepository(db *gorm.DB) *GormPomodoroSettingRepository {
	if db == nil {
		panic("database connection cannot be nil for GormPomodoroSettingRepository")
	}
	return &GormPomodoroSettingRepository{db: db}
}

var _ repository.PomodoroSettingRepository = (*GormPomodoroSettingRepository)(nil)

// ExistsByMemberID 实现检查会员是否已有番茄钟设置
func (r *GormPomodoroSettingRepository) ExistsByMemberID(ctx context.Context, memberID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PomodoroSetting{}).
		Where("member_id = ?", memberID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count pomodoro settings of member %d: %w", memberID, err)
	}
	return count > 0, nil
}

// FindByMemberID 实现查找会员的番茄钟设置
func (r *GormPomodoroSettingRepository) FindByMemberID(ctx context.Context, memberID uint) (*domain.PomodoroSetting, error) {
	var setting domain.PomodoroSetting
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSettingNotFound
		}
		return nil, fmt.Errorf("gorm: find pomodoro setting of member %d: %w", memberID, err)
	}
	return &setting, nil
}

// Upsert 实现创建或覆盖番茄钟设置（按 member_id 冲突时更新间隔字段）
func (r *GormPomodoroSettingRepository) Upsert(ctx context.Context, setting *domain.PomodoroSetting) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"study_minutes", "break_minutes"}),
	}).Create(setting).Error
	if err != nil {
		return fmt.Errorf("gorm: upsert pomodoro setting of member %d: %w", setting.MemberID, err)
	}
	return nil
}
