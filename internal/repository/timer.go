package repository

import (
	"context"

	"github.com/damins0406/Let-s-Study-Now/internal/domain"
)

// PersonalTimerRepository 定义了个人计时器行的存储操作。
type PersonalTimerRepository interface {
	// Create 插入计时器行。member_id 唯一约束被违反时返回
	// ErrDuplicateEntry —— 这就是"一人一个计时器"的强制机制。
	Create(ctx context.Context, timer *domain.PersonalTimer) error

	// FindByMemberID 查找会员的活跃计时器。不存在时返回 ErrTimerNotFound。
	FindByMemberID(ctx context.Context, memberID uint) (*domain.PersonalTimer, error)

	// Update 保存计时器的状态变更。
	Update(ctx context.Context, timer *domain.PersonalTimer) error

	// Delete 删除计时器行（会话结束），为该会员的下一次 Create 让路。
	Delete(ctx context.Context, timer *domain.PersonalTimer) error
}

// PomodoroSettingRepository 定义了番茄钟设置的存储操作。
type PomodoroSettingRepository interface {
	// ExistsByMemberID 判断会员是否已有番茄钟设置。
	ExistsByMemberID(ctx context.Context, memberID uint) (bool, error)

	// FindByMemberID 查找会员的番茄钟设置。不存在时返回 ErrSettingNotFound。
	FindByMemberID(ctx context.Context, memberID uint) (*domain.PomodoroSetting, error)

	// Upsert 创建或覆盖会员的番茄钟设置。
	Upsert(ctx context.Context, setting *domain.PomodoroSetting) error
}
