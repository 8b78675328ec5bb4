package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/damins0406/Let-s-Study-Now/internal/service"
)

// HandleServiceError 把业务错误映射为 HTTP 状态码。
// 冲突类 (已在房间 / 房间满 / 计时器重复 / 模式不符 / 删除预约中)
// 映射为 409，缺失类映射为 404，校验类映射为 400，
// 让客户端能区分每一种失败。
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAlreadyInRoom),
		errors.Is(err, service.ErrRoomFull),
		errors.Is(err, service.ErrRoomDeleting),
		errors.Is(err, service.ErrTimerAlreadyActive),
		errors.Is(err, service.ErrPomodoroModeActive),
		errors.Is(err, service.ErrNotInPomodoroMode),
		errors.Is(err, service.ErrPomodoroSettingRequired):
		ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrNoActiveTimer),
		errors.Is(err, service.ErrPomodoroSettingNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotParticipant),
		errors.Is(err, service.ErrInvalidRoomSpec),
		errors.Is(err, service.ErrInvalidTimerStatus),
		errors.Is(err, service.ErrInvalidPomodoroSetting):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		// Log the internal error for debugging
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
