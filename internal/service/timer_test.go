package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/damins0406/Let-s-Study-Now/internal/domain"
	"github.com/damins0406/Let-s-Study-Now/internal/repository"
	"github.com/damins0406/Let-s-Study-Now/internal/repository/mocks"
	"github.com/damins0406/Let-s-Study-Now/internal/service"
)

// newTimerService 组装带固定时钟的 TimerService 及其三个 Mock 仓储
func newTimerService(at time.Time) (*service.TimerService, *mocks.PersonalTimerRepository, *mocks.PomodoroSettingRepository, *mocks.StudyHistoryRepository) {
	timerRepo := new(mocks.PersonalTimerRepository)
	settingRepo := new(mocks.PomodoroSettingRepository)
	historyRepo := new(mocks.StudyHistoryRepository)
	svc := service.NewTimerService(timerRepo, settingRepo, historyRepo, fixedClock(at))
	return svc, timerRepo, settingRepo, historyRepo
}

// --- 测试 StartTimer 方法 ---

func TestTimerService_StartTimer_CreatorStartsStudying(t *testing.T) {
	// Arrange
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, timerRepo, _, _ := newTimerService(now)
	ctx := context.Background()

	timerRepo.On("Create", ctx, mock.MatchedBy(func(timer *domain.PersonalTimer) bool {
		assert.Equal(t, domain.TimerModeBasic, timer.Mode, "初始模式应为基本模式")
		assert.Equal(t, domain.TimerStatusStudying, timer.Status, "创建者应以学习状态开始")
		assert.Zero(t, timer.TotalStudySeconds)
		assert.True(t, timer.LastStatusChangedAt.Equal(now))
		return true
	})).Return(nil).Once()

	// Act
	timer, err := svc.StartTimer(ctx, 7, 42, true)

	// Assert
	assert.NoError(t, err, "创建者启动计时器不应有错误")
	require.NotNil(t, timer)
	timerRepo.AssertExpectations(t)
}

func TestTimerService_StartTimer_JoinerStartsResting(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, timerRepo, _, _ := newTimerService(now)
	ctx := context.Background()

	timerRepo.On("Create", ctx, mock.MatchedBy(func(timer *domain.PersonalTimer) bool {
		return timer.Status == domain.TimerStatusResting
	})).Return(nil).Once()

	timer, err := svc.StartTimer(ctx, 8, 42, false)

	assert.NoError(t, err)
	assert.Equal(t, domain.TimerStatusResting, timer.Status, "普通参与者应以休息状态开始")
	timerRepo.AssertExpectations(t)
}

func TestTimerService_StartTimer_DuplicateRejected(t *testing.T) {
	// "一人一个计时器"由唯一约束强制，重复启动映射为业务冲突
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, timerRepo, _, _ := newTimerService(now)
	ctx := context.Background()

	timerRepo.On("Create", ctx, mock.AnythingOfType("*domain.PersonalTimer")).
		Return(repository.ErrDuplicateEntry).Once()

	_, err := svc.StartTimer(ctx, 7, 42, true)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrTimerAlreadyActive), "错误类型应为 ErrTimerAlreadyActive")
}

// --- 测试 ToggleTimer 方法 ---

func TestTimerService_ToggleTimer_StudyIntervalAccumulates(t *testing.T) {
	// Arrange: 学习状态持续 90 秒后切换到休息
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	now := start.Add(90 * time.Second)
	svc, timerRepo, _, _ := newTimerService(now)
	ctx := context.Background()

	timer := &domain.PersonalTimer{
		MemberID: 7, RoomID: 42,
		Mode: domain.TimerModeBasic, Status: domain.TimerStatusStudying,
		TotalStudySeconds: 10, LastStatusChangedAt: start,
	}
	timerRepo.On("FindByMemberID", ctx, uint(7)).Return(timer, nil).Once()
	timerRepo.On("Update", ctx, timer).Return(nil).Once()

	// Act
	updated, err := svc.ToggleTimer(ctx, 7)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, domain.TimerStatusResting, updated.Status, "学习状态应翻转为休息")
	assert.Equal(t, int64(100), updated.TotalStudySeconds, "关闭的学习区间 90 秒应计入累计")
	assert.True(t, updated.LastStatusChangedAt.Equal(now), "区间起点应推进到当前时钟")
	timerRepo.AssertExpectations(t)
}

func TestTimerService_ToggleTimer_RestIntervalNotCounted(t *testing.T) {
	// 休息区间不产生学习秒数
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	now := start.Add(5 * time.Minute)
	svc, timerRepo, _, _ := newTimerService(now)
	ctx := context.Background()

	timer := &domain.PersonalTimer{
		MemberID: 7, Mode: domain.TimerModeBasic, Status: domain.TimerStatusResting,
		TotalStudySeconds: 100, LastStatusChangedAt: start,
	}
	timerRepo.On("FindByMemberID", ctx, uint(7)).Return(timer, nil).Once()
	timerRepo.On("Update", ctx, timer).Return(nil).Once()

	updated, err := svc.ToggleTimer(ctx, 7)

	assert.NoError(t, err)
	assert.Equal(t, domain.TimerStatusStudying, updated.Status)
	assert.Equal(t, int64(100), updated.TotalStudySeconds, "休息区间不应改变累计秒数")
}

func TestTimerService_ToggleTimer_RejectedInPomodoroMode(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, timerRepo, _, _ := newTimerService(now)
	ctx := context.Background()

	timer := &domain.PersonalTimer{
		MemberID: 7, Mode: domain.TimerModePomodoro, Status: domain.TimerStatusStudying,
		LastStatusChangedAt: now,
	}
	timerRepo.On("FindByMemberID", ctx, uint(7)).Return(timer, nil).Once()

	_, err := svc.ToggleTimer(ctx, 7)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrPomodoroModeActive), "番茄钟模式下手动切换应被拒绝")
	timerRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTimerService_ToggleTimer_NoActiveTimer(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, timerRepo, _, _ := newTimerService(now)
	ctx := context.Background()

	timerRepo.On("FindByMemberID", ctx, uint(7)).Return(nil, repository.ErrTimerNotFound).Once()

	_, err := svc.ToggleTimer(ctx, 7)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNoActiveTimer), "错误类型应为 ErrNoActiveTimer")
}

// --- 测试番茄钟模式切换 ---

func TestTimerService_StartPomodoroMode_RequiresSetting(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, timerRepo, settingRepo, _ := newTimerService(now)
	ctx := context.Background()

	timer := &domain.PersonalTimer{MemberID: 7, Mode: domain.TimerModeBasic, Status: domain.TimerStatusStudying, LastStatusChangedAt: now}
	timerRepo.On("FindByMemberID", ctx, uint(7)).Return(timer, nil).Once()
	settingRepo.On("ExistsByMemberID", ctx, uint(7)).Return(false, nil).Once()

	_, err := svc.StartPomodoroMode(ctx, 7)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrPomodoroSettingRequired), "没有设置时不应能进入番茄钟模式")
	timerRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTimerService_ModeSwitchPreservesAccumulatedSeconds(t *testing.T) {
	// Arrange: 进入再退出番茄钟模式，累计秒数必须原样保留
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, timerRepo, settingRepo, _ := newTimerService(now)
	ctx := context.Background()

	timer := &domain.PersonalTimer{
		MemberID: 7, Mode: domain.TimerModeBasic, Status: domain.TimerStatusResting,
		TotalStudySeconds: 360, LastStatusChangedAt: now,
	}
	timerRepo.On("FindByMemberID", ctx, uint(7)).Return(timer, nil).Twice()
	settingRepo.On("ExistsByMemberID", ctx, uint(7)).Return(true, nil).Once()
	timerRepo.On("Update", ctx, timer).Return(nil).Twice()

	// Act
	inPomodoro, err := svc.StartPomodoroMode(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.TimerModePomodoro, inPomodoro.Mode)
	assert.Equal(t, int64(360), inPomodoro.TotalStudySeconds, "进入番茄钟模式不应改变累计")

	backToBasic, err := svc.StopPomodoroMode(ctx, 7)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, domain.TimerModeBasic, backToBasic.Mode)
	assert.Equal(t, int64(360), backToBasic.TotalStudySeconds, "退出番茄钟模式不应改变累计")
	timerRepo.AssertExpectations(t)
}

func TestTimerService_ChangePomodoroStatus_ClosesStudyInterval(t *testing.T) {
	// Arrange: 番茄钟学习区间 25 分钟结束，边界切换到休息
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	now := start.Add(25 * time.Minute)
	svc, timerRepo, _, _ := newTimerService(now)
	ctx := context.Background()

	timer := &domain.PersonalTimer{
		MemberID: 7, Mode: domain.TimerModePomodoro, Status: domain.TimerStatusStudying,
		TotalStudySeconds: 0, LastStatusChangedAt: start,
	}
	timerRepo.On("FindByMemberID", ctx, uint(7)).Return(timer, nil).Once()
	timerRepo.On("Update", ctx, timer).Return(nil).Once()

	// Act
	updated, err := svc.ChangePomodoroStatus(ctx, 7, domain.TimerStatusResting)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, domain.TimerStatusResting, updated.Status)
	assert.Equal(t, int64(1500), updated.TotalStudySeconds, "25 分钟学习区间应计入 1500 秒")
	timerRepo.AssertExpectations(t)
}

func TestTimerService_ChangePomodoroStatus_RejectedInBasicMode(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, timerRepo, _, _ := newTimerService(now)
	ctx := context.Background()

	timer := &domain.PersonalTimer{MemberID: 7, Mode: domain.TimerModeBasic, Status: domain.TimerStatusStudying, LastStatusChangedAt: now}
	timerRepo.On("FindByMemberID", ctx, uint(7)).Return(timer, nil).Once()

	_, err := svc.ChangePomodoroStatus(ctx, 7, domain.TimerStatusResting)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNotInPomodoroMode), "基本模式下不应接受区间边界切换")
}

func TestTimerService_ChangePomodoroStatus_InvalidStatus(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, timerRepo, _, _ := newTimerService(now)
	ctx := context.Background()

	_, err := svc.ChangePomodoroStatus(ctx, 7, domain.TimerStatus("PAUSED"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidTimerStatus), "未知状态值应被拒绝")
	timerRepo.AssertNotCalled(t, "FindByMemberID", mock.Anything, mock.Anything)
}

// --- 测试 EndTimer 方法 ---

func TestTimerService_EndTimer_FlushesSecondsToHistory(t *testing.T) {
	// Arrange: 结束时学习区间还开着，先结算再落账再删行
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	now := start.Add(2 * time.Minute)
	svc, timerRepo, _, historyRepo := newTimerService(now)
	ctx := context.Background()

	timer := &domain.PersonalTimer{
		MemberID: 7, Mode: domain.TimerModeBasic, Status: domain.TimerStatusStudying,
		TotalStudySeconds: 480, LastStatusChangedAt: start,
	}
	timerRepo.On("FindByMemberID", ctx, uint(7)).Return(timer, nil).Once()
	// 480 已累计 + 120 当前区间 = 600 秒落入今天的账
	historyRepo.On("AddStudySeconds", ctx, uint(7), "2026-03-14", int64(600)).Return(nil).Once()
	timerRepo.On("Delete", ctx, timer).Return(nil).Once()

	// Act
	err := svc.EndTimer(ctx, 7)

	// Assert
	assert.NoError(t, err, "结束计时器不应有错误")
	timerRepo.AssertExpectations(t)
	historyRepo.AssertExpectations(t)
}

func TestTimerService_EndTimer_ZeroSecondsSkipsHistory(t *testing.T) {
	// 全程休息的会话：0 秒不落账，但计时器行照样删除
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, timerRepo, _, historyRepo := newTimerService(now)
	ctx := context.Background()

	timer := &domain.PersonalTimer{
		MemberID: 8, Mode: domain.TimerModeBasic, Status: domain.TimerStatusResting,
		TotalStudySeconds: 0, LastStatusChangedAt: now.Add(-time.Hour),
	}
	timerRepo.On("FindByMemberID", ctx, uint(8)).Return(timer, nil).Once()
	timerRepo.On("Delete", ctx, timer).Return(nil).Once()

	err := svc.EndTimer(ctx, 8)

	assert.NoError(t, err)
	historyRepo.AssertNotCalled(t, "AddStudySeconds", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	timerRepo.AssertExpectations(t)
}

func TestTimerService_EndTimer_NoActiveTimer(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, timerRepo, _, _ := newTimerService(now)
	ctx := context.Background()

	timerRepo.On("FindByMemberID", ctx, uint(9)).Return(nil, repository.ErrTimerNotFound).Once()

	err := svc.EndTimer(ctx, 9)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNoActiveTimer), "错误类型应为 ErrNoActiveTimer")
}

// --- 测试 GetStudyTime 方法 ---

func TestTimerService_GetStudyTime_TotalAndToday(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, _, _, historyRepo := newTimerService(now)
	ctx := context.Background()

	historyRepo.On("TotalStudySeconds", ctx, uint(7)).Return(int64(7200), nil).Once()
	historyRepo.On("FindByMemberIDAndDate", ctx, uint(7), "2026-03-14").
		Return(&domain.StudyHistory{MemberID: 7, StudyDate: "2026-03-14", TotalStudySeconds: 600}, nil).Once()

	summary, err := svc.GetStudyTime(ctx, 7)

	assert.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, int64(7200), summary.TotalSeconds, "终身累计应来自 SUM")
	assert.Equal(t, int64(600), summary.TodaySeconds, "今日累计应来自当天的行")
	historyRepo.AssertExpectations(t)
}

func TestTimerService_GetStudyTime_NoHistoryToday(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, _, _, historyRepo := newTimerService(now)
	ctx := context.Background()

	historyRepo.On("TotalStudySeconds", ctx, uint(7)).Return(int64(7200), nil).Once()
	historyRepo.On("FindByMemberIDAndDate", ctx, uint(7), "2026-03-14").
		Return(nil, repository.ErrHistoryNotFound).Once()

	summary, err := svc.GetStudyTime(ctx, 7)

	assert.NoError(t, err, "今天没有落账不应是错误")
	assert.Equal(t, int64(0), summary.TodaySeconds, "今日累计应按 0 处理")
}

// --- 测试番茄钟设置 ---

func TestTimerService_SavePomodoroSetting_Success(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, _, settingRepo, _ := newTimerService(now)
	ctx := context.Background()

	settingRepo.On("Upsert", ctx, mock.MatchedBy(func(s *domain.PomodoroSetting) bool {
		return s.MemberID == 7 && s.StudyMinutes == 50 && s.BreakMinutes == 10
	})).Return(nil).Once()

	setting, err := svc.SavePomodoroSetting(ctx, 7, 50, 10)

	assert.NoError(t, err)
	require.NotNil(t, setting)
	settingRepo.AssertExpectations(t)
}

func TestTimerService_SavePomodoroSetting_OutOfRange(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, _, settingRepo, _ := newTimerService(now)
	ctx := context.Background()

	cases := []struct {
		name         string
		study, brk   int
	}{
		{"学习间隔为 0", 0, 10},
		{"学习间隔超过 180", 181, 10},
		{"休息间隔为 0", 50, 0},
		{"休息间隔超过 180", 50, 181},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SavePomodoroSetting(ctx, 7, tc.study, tc.brk)
			require.Error(t, err)
			assert.True(t, errors.Is(err, service.ErrInvalidPomodoroSetting), "错误类型应为 ErrInvalidPomodoroSetting")
		})
	}
	settingRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestTimerService_GetPomodoroSetting_NotFound(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc, _, settingRepo, _ := newTimerService(now)
	ctx := context.Background()

	settingRepo.On("FindByMemberID", ctx, uint(7)).Return(nil, repository.ErrSettingNotFound).Once()

	_, err := svc.GetPomodoroSetting(ctx, 7)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrPomodoroSettingNotFound), "错误类型应为 ErrPomodoroSettingNotFound")
}
