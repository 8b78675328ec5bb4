package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/damins0406/Let-s-Study-Now/internal/domain"
	"github.com/damins0406/Let-s-Study-Now/internal/service"
)

// TimerHandler 封装了个人计时器相关的 HTTP 处理逻辑。
// 计时器的启动/结束由房间进出事件驱动（见 RoomHandler），
// 这里只暴露会话内的操作：切换、番茄钟模式、状态查询、累计查询。
type TimerHandler struct {
	timerService *service.TimerService
}

// NewTimerHandler 创建 TimerHandler 实例
func NewTimerHandler(timerService *service.TimerService) *TimerHandler {
	return &TimerHandler{timerService: timerService}
}

// TimerStatusResponse 定义计时器状态视图
type TimerStatusResponse struct {
	Mode              domain.TimerMode   `json:"mode"`
	Status            domain.TimerStatus `json:"status"`
	TotalStudySeconds int64              `json:"totalStudySeconds"`
}

func timerStatusFrom(timer *domain.PersonalTimer) TimerStatusResponse {
	return TimerStatusResponse{
		Mode:              timer.Mode,
		Status:            timer.Status,
		TotalStudySeconds: timer.TotalStudySeconds,
	}
}

// ToggleTimer 处理基本模式下的手动学习/休息切换
func (h *TimerHandler) ToggleTimer(c *gin.Context) {
	memberID, ok := memberIDFromContext(c)
	if !ok {
		return
	}
	timer, err := h.timerService.ToggleTimer(c.Request.Context(), memberID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, timerStatusFrom(timer))
}

// StartPomodoro 处理进入番茄钟模式
func (h *TimerHandler) StartPomodoro(c *gin.Context) {
	memberID, ok := memberIDFromContext(c)
	if !ok {
		return
	}
	timer, err := h.timerService.StartPomodoroMode(c.Request.Context(), memberID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, timerStatusFrom(timer))
}

// StopPomodoro 处理退出番茄钟模式
func (h *TimerHandler) StopPomodoro(c *gin.Context) {
	memberID, ok := memberIDFromContext(c)
	if !ok {
		return
	}
	timer, err := h.timerService.StopPomodoroMode(c.Request.Context(), memberID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, timerStatusFrom(timer))
}

// ChangePomodoroStatusRequest 定义番茄钟区间边界切换请求的结构体
type ChangePomodoroStatusRequest struct {
	Status domain.TimerStatus `json:"status" binding:"required"`
}

// ChangePomodoroStatus 处理番茄钟区间边界的状态切换
// （学习区间结束 → RESTING，休息区间结束 → STUDYING）
func (h *TimerHandler) ChangePomodoroStatus(c *gin.Context) {
	memberID, ok := memberIDFromContext(c)
	if !ok {
		return
	}

	var req ChangePomodoroStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.ChangePomodoroStatus: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: status is required")
		return
	}

	timer, err := h.timerService.ChangePomodoroStatus(c.Request.Context(), memberID, req.Status)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, timerStatusFrom(timer))
}

// GetTimerStatus 处理当前计时器状态查询
func (h *TimerHandler) GetTimerStatus(c *gin.Context) {
	memberID, ok := memberIDFromContext(c)
	if !ok {
		return
	}
	timer, err := h.timerService.GetTimerStatus(c.Request.Context(), memberID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, timerStatusFrom(timer))
}

// GetStudyTime 处理累计学习时长查询（终身 + 今日）
func (h *TimerHandler) GetStudyTime(c *gin.Context) {
	memberID, ok := memberIDFromContext(c)
	if !ok {
		return
	}
	summary, err := h.timerService.GetStudyTime(c.Request.Context(), memberID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, summary)
}

// PomodoroSettingRequest 定义番茄钟设置请求的结构体
type PomodoroSettingRequest struct {
	StudyMinutes int `json:"studyMinutes" binding:"required,min=1,max=180"`
	BreakMinutes int `json:"breakMinutes" binding:"required,min=1,max=180"`
}

// SavePomodoroSetting 处理创建/覆盖番茄钟间隔设置
func (h *TimerHandler) SavePomodoroSetting(c *gin.Context) {
	memberID, ok := memberIDFromContext(c)
	if !ok {
		return
	}

	var req PomodoroSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.SavePomodoroSetting: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: studyMinutes and breakMinutes (1~180) are required")
		return
	}

	setting, err := h.timerService.SavePomodoroSetting(c.Request.Context(), memberID, req.StudyMinutes, req.BreakMinutes)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, setting)
}

// GetPomodoroSetting 处理番茄钟设置查询
func (h *TimerHandler) GetPomodoroSetting(c *gin.Context) {
	memberID, ok := memberIDFromContext(c)
	if !ok {
		return
	}
	setting, err := h.timerService.GetPomodoroSetting(c.Request.Context(), memberID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, setting)
}
