package setup

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/damins0406/Let-s-Study-Now/internal/domain"
)

// MigrateDB handles all database migrations using the provided GORM DB instance.
// 四张逻辑表：rooms / room_participants / personal_timers (+ 设置) / study_histories。
// 唯一索引（参与关系、一人一计时器、按天累计）在模型 tag 中声明，由这里创建。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	err := db.AutoMigrate(
		&domain.Room{},
		&domain.RoomParticipant{},
		&domain.PersonalTimer{},
		&domain.PomodoroSetting{},
		&domain.StudyHistory{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}
	return nil
}
