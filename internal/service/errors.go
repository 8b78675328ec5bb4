package service

import "errors"

// 业务错误。调用方（HTTP 层）据此区分"房间满了"/"房间没了"/
// "你已经在别的房间"等结果，不允许折叠成笼统的失败。
var (
	// 房间生命周期
	ErrAlreadyInRoom   = errors.New("already participating in an active room")
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomDeleting    = errors.New("room is pending deletion and closed to new joins")
	ErrRoomFull        = errors.New("room is full")
	ErrNotParticipant  = errors.New("not a participant of this room")
	ErrInvalidRoomSpec = errors.New("invalid room specification")

	// 个人计时器
	ErrTimerAlreadyActive      = errors.New("an active timer already exists for this member")
	ErrNoActiveTimer           = errors.New("no active timer for this member")
	ErrPomodoroModeActive      = errors.New("manual toggle is not allowed in pomodoro mode")
	ErrNotInPomodoroMode       = errors.New("timer is not in pomodoro mode")
	ErrInvalidTimerStatus      = errors.New("invalid timer status")
	ErrPomodoroSettingRequired = errors.New("pomodoro setting is required")
	ErrPomodoroSettingNotFound = errors.New("pomodoro setting not found")
	ErrInvalidPomodoroSetting  = errors.New("invalid pomodoro setting")

	ErrInternalServer = errors.New("internal server error")
)
