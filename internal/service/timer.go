package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/damins0406/Let-s-Study-Now/internal/domain"
	"github.com/damins0406/Let-s-Study-Now/internal/repository"
)

// 番茄钟设置的校验边界 (分钟)
const (
	minIntervalMinutes = 1
	maxIntervalMinutes = 180
)

// StudyTimeSummary 是累计学习时长的查询结果。
type StudyTimeSummary struct {
	TotalSeconds int64 `json:"totalSeconds"` // 终身累计
	TodaySeconds int64 `json:"todaySeconds"` // 今日累计
}

// TimerService 负责个人计时器的状态机：启动/结束、基本模式的手动
// 切换、番茄钟模式的进入/退出与区间边界切换，以及结束时向
// StudyHistory 落账。
type TimerService struct {
	timerRepo   repository.PersonalTimerRepository
	settingRepo repository.PomodoroSettingRepository
	historyRepo repository.StudyHistoryRepository
	now         Clock
}

// NewTimerService 创建 TimerService 实例。clock 传 nil 时使用系统时钟。
func NewTimerService(
	timerRepo repository.PersonalTimerRepository,
	settingRepo repository.PomodoroSettingRepository,
	historyRepo repository.StudyHistoryRepository,
	clock Clock,
) *TimerService {
	if timerRepo == nil {
		panic("PersonalTimerRepository cannot be nil for TimerService")
	}
	if settingRepo == nil {
		panic("PomodoroSettingRepository cannot be nil for TimerService")
	}
	if historyRepo == nil {
		panic("StudyHistoryRepository cannot be nil for TimerService")
	}
	if clock == nil {
		clock = time.Now
	}
	return &TimerService{
		timerRepo:   timerRepo,
		settingRepo: settingRepo,
		historyRepo: historyRepo,
		now:         clock,
	}
}

// StartTimer 在会员进入房间时启动计时会话。
// 创建者以学习状态开始，普通参与者以休息状态开始，模式一律为基本模式。
// "一人一个计时器"由 member_id 唯一约束在插入时强制，不做先查再插。
func (s *TimerService) StartTimer(ctx context.Context, memberID, roomID uint, isRoomCreator bool) (*domain.PersonalTimer, error) {
	logCtx := logrus.WithFields(logrus.Fields{"member_id": memberID, "room_id": roomID})

	initialStatus := domain.TimerStatusResting
	if isRoomCreator {
		initialStatus = domain.TimerStatusStudying
	}

	timer := &domain.PersonalTimer{
		MemberID:            memberID,
		RoomID:              roomID,
		Mode:                domain.TimerModeBasic,
		Status:              initialStatus,
		TotalStudySeconds:   0,
		LastStatusChangedAt: s.now(),
	}
	if err := s.timerRepo.Create(ctx, timer); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.Warn("StartTimer: Member already has an active timer")
			return nil, ErrTimerAlreadyActive
		}
		logCtx.WithError(err).Error("StartTimer: Failed to create timer")
		return nil, ErrInternalServer
	}

	logCtx.WithField("status", timer.Status).Info("Personal timer started")
	return timer, nil
}

// EndTimer 在会员退出房间时结束计时会话：
// 结算当前区间，把累计学习秒数落入今天的 StudyHistory（0 秒不落账），
// 然后删除计时器行 —— 这是该会员下一次 StartTimer 能成功的前提。
func (s *TimerService) EndTimer(ctx context.Context, memberID uint) error {
	logCtx := logrus.WithField("member_id", memberID)

	timer, err := s.timerRepo.FindByMemberID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrTimerNotFound) {
			logCtx.Warn("EndTimer: No active timer")
			return ErrNoActiveTimer
		}
		logCtx.WithError(err).Error("EndTimer: Repository error")
		return ErrInternalServer
	}

	now := s.now()
	timer.CloseInterval(now)

	if timer.TotalStudySeconds > 0 {
		date := now.Format(domain.StudyDateLayout)
		if err := s.historyRepo.AddStudySeconds(ctx, memberID, date, timer.TotalStudySeconds); err != nil {
			logCtx.WithError(err).Error("EndTimer: Failed to flush study seconds to history")
			return ErrInternalServer
		}
		logCtx = logCtx.WithFields(logrus.Fields{"study_date": date, "flushed_seconds": timer.TotalStudySeconds})
	}

	if err := s.timerRepo.Delete(ctx, timer); err != nil {
		logCtx.WithError(err).Error("EndTimer: Failed to delete timer")
		return ErrInternalServer
	}

	logCtx.Info("Personal timer ended")
	return nil
}

// ToggleTimer 在基本模式下手动翻转学习/休息状态，
// 被关闭的区间若是学习区间则计入累计。番茄钟模式下拒绝手动切换。
func (s *TimerService) ToggleTimer(ctx context.Context, memberID uint) (*domain.PersonalTimer, error) {
	logCtx := logrus.WithField("member_id", memberID)

	timer, err := s.findTimer(ctx, memberID, logCtx)
	if err != nil {
		return nil, err
	}
	if timer.Mode != domain.TimerModeBasic {
		logCtx.Warn("ToggleTimer: Manual toggle rejected in pomodoro mode")
		return nil, ErrPomodoroModeActive
	}

	timer.FlipStatus(s.now())
	if err := s.timerRepo.Update(ctx, timer); err != nil {
		logCtx.WithError(err).Error("ToggleTimer: Failed to update timer")
		return nil, ErrInternalServer
	}

	logCtx.WithFields(logrus.Fields{
		"status":              timer.Status,
		"total_study_seconds": timer.TotalStudySeconds,
	}).Info("Timer toggled")
	return timer, nil
}

// StartPomodoroMode 切换到番茄钟模式。
// 需要会员已有番茄钟设置；已累计的学习秒数原样保留（连续性要求）。
func (s *TimerService) StartPomodoroMode(ctx context.Context, memberID uint) (*domain.PersonalTimer, error) {
	logCtx := logrus.WithField("member_id", memberID)

	timer, err := s.findTimer(ctx, memberID, logCtx)
	if err != nil {
		return nil, err
	}

	hasSetting, err := s.settingRepo.ExistsByMemberID(ctx, memberID)
	if err != nil {
		logCtx.WithError(err).Error("StartPomodoroMode: Failed to check pomodoro setting")
		return nil, ErrInternalServer
	}
	if !hasSetting {
		logCtx.Warn("StartPomodoroMode: Pomodoro setting missing")
		return nil, ErrPomodoroSettingRequired
	}

	timer.Mode = domain.TimerModePomodoro
	if err := s.timerRepo.Update(ctx, timer); err != nil {
		logCtx.WithError(err).Error("StartPomodoroMode: Failed to update timer")
		return nil, ErrInternalServer
	}

	logCtx.Info("Pomodoro mode started")
	return timer, nil
}

// StopPomodoroMode 退回基本模式，累计数据不变。
func (s *TimerService) StopPomodoroMode(ctx context.Context, memberID uint) (*domain.PersonalTimer, error) {
	logCtx := logrus.WithField("member_id", memberID)

	timer, err := s.findTimer(ctx, memberID, logCtx)
	if err != nil {
		return nil, err
	}

	timer.Mode = domain.TimerModeBasic
	if err := s.timerRepo.Update(ctx, timer); err != nil {
		logCtx.WithError(err).Error("StopPomodoroMode: Failed to update timer")
		return nil, ErrInternalServer
	}

	logCtx.Info("Pomodoro mode stopped")
	return timer, nil
}

// ChangePomodoroStatus 在番茄钟区间边界到达时显式切换状态
// （学习区间结束 → RESTING，休息区间结束 → STUDYING）。
// 结算逻辑与手动切换一致，但只在番茄钟模式下有意义。
func (s *TimerService) ChangePomodoroStatus(ctx context.Context, memberID uint, newStatus domain.TimerStatus) (*domain.PersonalTimer, error) {
	logCtx := logrus.WithFields(logrus.Fields{"member_id": memberID, "new_status": newStatus})

	if newStatus != domain.TimerStatusStudying && newStatus != domain.TimerStatusResting {
		logCtx.Warn("ChangePomodoroStatus: Invalid timer status")
		return nil, ErrInvalidTimerStatus
	}

	timer, err := s.findTimer(ctx, memberID, logCtx)
	if err != nil {
		return nil, err
	}
	if timer.Mode != domain.TimerModePomodoro {
		logCtx.Warn("ChangePomodoroStatus: Timer is not in pomodoro mode")
		return nil, ErrNotInPomodoroMode
	}

	timer.ChangeStatus(newStatus, s.now())
	if err := s.timerRepo.Update(ctx, timer); err != nil {
		logCtx.WithError(err).Error("ChangePomodoroStatus: Failed to update timer")
		return nil, ErrInternalServer
	}

	logCtx.WithField("total_study_seconds", timer.TotalStudySeconds).Info("Pomodoro status changed")
	return timer, nil
}

// GetTimerStatus 返回会员当前计时器的状态视图。
func (s *TimerService) GetTimerStatus(ctx context.Context, memberID uint) (*domain.PersonalTimer, error) {
	return s.findTimer(ctx, memberID, logrus.WithField("member_id", memberID))
}

// GetStudyTime 返回终身累计和今日累计学习秒数。
func (s *TimerService) GetStudyTime(ctx context.Context, memberID uint) (*StudyTimeSummary, error) {
	logCtx := logrus.WithField("member_id", memberID)

	total, err := s.historyRepo.TotalStudySeconds(ctx, memberID)
	if err != nil {
		logCtx.WithError(err).Error("GetStudyTime: Failed to sum study seconds")
		return nil, ErrInternalServer
	}

	today := s.now().Format(domain.StudyDateLayout)
	var todaySeconds int64
	history, err := s.historyRepo.FindByMemberIDAndDate(ctx, memberID, today)
	if err != nil {
		if !errors.Is(err, repository.ErrHistoryNotFound) {
			logCtx.WithError(err).Error("GetStudyTime: Failed to load today's history")
			return nil, ErrInternalServer
		}
		// 今天还没有落账，按 0 处理
	} else {
		todaySeconds = history.TotalStudySeconds
	}

	return &StudyTimeSummary{TotalSeconds: total, TodaySeconds: todaySeconds}, nil
}

// SavePomodoroSetting 创建或覆盖会员的番茄钟间隔设置。
func (s *TimerService) SavePomodoroSetting(ctx context.Context, memberID uint, studyMinutes, breakMinutes int) (*domain.PomodoroSetting, error) {
	logCtx := logrus.WithFields(logrus.Fields{
		"member_id":     memberID,
		"study_minutes": studyMinutes,
		"break_minutes": breakMinutes,
	})

	if studyMinutes < minIntervalMinutes || studyMinutes > maxIntervalMinutes ||
		breakMinutes < minIntervalMinutes || breakMinutes > maxIntervalMinutes {
		logCtx.Warn("SavePomodoroSetting: Interval out of range")
		return nil, ErrInvalidPomodoroSetting
	}

	setting := &domain.PomodoroSetting{
		MemberID:     memberID,
		StudyMinutes: studyMinutes,
		BreakMinutes: breakMinutes,
	}
	if err := s.settingRepo.Upsert(ctx, setting); err != nil {
		logCtx.WithError(err).Error("SavePomodoroSetting: Failed to upsert setting")
		return nil, ErrInternalServer
	}

	logCtx.Info("Pomodoro setting saved")
	return setting, nil
}

// GetPomodoroSetting 返回会员的番茄钟设置。
func (s *TimerService) GetPomodoroSetting(ctx context.Context, memberID uint) (*domain.PomodoroSetting, error) {
	setting, err := s.settingRepo.FindByMemberID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrSettingNotFound) {
			return nil, ErrPomodoroSettingNotFound
		}
		logrus.WithError(err).WithField("member_id", memberID).Error("GetPomodoroSetting: Repository error")
		return nil, ErrInternalServer
	}
	return setting, nil
}

// findTimer 查找会员的活跃计时器并映射错误。
func (s *TimerService) findTimer(ctx context.Context, memberID uint, logCtx *logrus.Entry) (*domain.PersonalTimer, error) {
	timer, err := s.timerRepo.FindByMemberID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrTimerNotFound) {
			logCtx.Warn("No active timer for member")
			return nil, ErrNoActiveTimer
		}
		logCtx.WithError(err).Error("Failed to load personal timer")
		return nil, ErrInternalServer
	}
	return timer, nil
}
