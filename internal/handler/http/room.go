package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/damins0406/Let-s-Study-Now/internal/domain"
	"github.com/damins0406/Let-s-Study-Now/internal/service"
)

// RoomHandler 封装了开放自习房间相关的 HTTP 处理逻辑。
// 进/出房间的事件在这里驱动个人计时器：创建/加入启动计时，退出结束计时。
type RoomHandler struct {
	roomService  *service.RoomService
	timerService *service.TimerService
}

// NewRoomHandler 创建 RoomHandler 实例
func NewRoomHandler(roomService *service.RoomService, timerService *service.TimerService) *RoomHandler {
	return &RoomHandler{roomService: roomService, timerService: timerService}
}

// CreateRoomRequest 定义创建房间请求的结构体
type CreateRoomRequest struct {
	Title           string `json:"title" binding:"required,min=1,max=30"`
	Description     string `json:"description" binding:"max=200"`
	StudyField      string `json:"studyField" binding:"required"`
	MaxParticipants int    `json:"maxParticipants" binding:"required,min=2,max=10"`
}

// RoomView 定义对外的房间视图
type RoomView struct {
	ID                  uint              `json:"id"`
	Title               string            `json:"title"`
	Description         string            `json:"description"`
	StudyField          string            `json:"studyField"`
	MaxParticipants     int               `json:"maxParticipants"`
	CurrentParticipants int               `json:"currentParticipants"`
	Status              domain.RoomStatus `json:"status"`
	CreatedAt           time.Time         `json:"createdAt"`
}

func roomViewFrom(room *domain.Room) RoomView {
	return RoomView{
		ID:                  room.ID,
		Title:               room.Title,
		Description:         room.Description,
		StudyField:          room.StudyField,
		MaxParticipants:     room.MaxParticipants,
		CurrentParticipants: room.CurrentParticipants,
		Status:              room.Status,
		CreatedAt:           room.CreatedAt,
	}
}

// CreateRoom 处理创建新房间的请求
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	memberID, ok := memberIDFromContext(c)
	if !ok {
		return
	}
	logCtx := logrus.WithField("member_id", memberID)

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logCtx.WithError(err).Warn("Handler.CreateRoom: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: title, studyField and maxParticipants (2~10) are required")
		return
	}

	spec := service.RoomCreateSpec{
		Title:           req.Title,
		Description:     req.Description,
		StudyField:      req.StudyField,
		MaxParticipants: req.MaxParticipants,
	}
	room, err := h.roomService.CreateRoom(c.Request.Context(), spec, memberID)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.CreateRoom: Failed to create room via service")
		HandleServiceError(c, err)
		return
	}
	logCtx = logCtx.WithField("room_id", room.ID)

	// 进房事件：创建者以学习状态启动个人计时。
	// 房间已经建好，计时启动失败只记日志，不回滚创建。
	if _, err := h.timerService.StartTimer(c.Request.Context(), memberID, room.ID, true); err != nil {
		logCtx.WithError(err).Warn("Handler.CreateRoom: Failed to start personal timer for creator")
	}

	logCtx.Info("Handler.CreateRoom: Room created successfully")
	SuccessResponse(c, http.StatusCreated, roomViewFrom(room))
}

// ListRooms 处理活跃房间列表查询（含删除预约中的房间）
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.roomService.GetRoomList(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	views := make([]RoomView, 0, len(rooms))
	for i := range rooms {
		views = append(views, roomViewFrom(&rooms[i]))
	}
	SuccessResponse(c, http.StatusOK, views)
}

// GetRoomDetail 处理房间详情查询
func (h *RoomHandler) GetRoomDetail(c *gin.Context) {
	roomID, ok := roomIDFromPath(c)
	if !ok {
		return
	}
	room, err := h.roomService.GetRoomByID(c.Request.Context(), roomID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, roomViewFrom(room))
}

// JoinRoom 处理会员加入房间的请求
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	memberID, ok := memberIDFromContext(c)
	if !ok {
		return
	}
	roomID, ok := roomIDFromPath(c)
	if !ok {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"member_id": memberID, "room_id": roomID})

	room, err := h.roomService.JoinRoom(c.Request.Context(), roomID, memberID)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.JoinRoom: Failed to join room via service")
		HandleServiceError(c, err)
		return
	}

	// 进房事件：普通参与者以休息状态启动个人计时
	if _, err := h.timerService.StartTimer(c.Request.Context(), memberID, roomID, false); err != nil {
		logCtx.WithError(err).Warn("Handler.JoinRoom: Failed to start personal timer")
	}

	logCtx.Info("Handler.JoinRoom: Member joined room successfully")
	SuccessResponse(c, http.StatusOK, roomViewFrom(room))
}

// LeaveRoom 处理会员退出房间的请求
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	memberID, ok := memberIDFromContext(c)
	if !ok {
		return
	}
	roomID, ok := roomIDFromPath(c)
	if !ok {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"member_id": memberID, "room_id": roomID})

	if err := h.roomService.LeaveRoom(c.Request.Context(), roomID, memberID); err != nil {
		logCtx.WithError(err).Warn("Handler.LeaveRoom: Failed to leave room via service")
		HandleServiceError(c, err)
		return
	}

	// 出房事件：结束个人计时并落账。计时器可能已被清扫任务结算。
	if err := h.timerService.EndTimer(c.Request.Context(), memberID); err != nil && !errors.Is(err, service.ErrNoActiveTimer) {
		logCtx.WithError(err).Warn("Handler.LeaveRoom: Failed to end personal timer")
	}

	logCtx.Info("Handler.LeaveRoom: Member left room successfully")
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Left room successfully"})
}

// roomIDFromPath 解析路径参数中的房间 ID。
func roomIDFromPath(c *gin.Context) (uint, bool) {
	roomID, err := strconv.ParseUint(c.Param("roomId"), 10, 64)
	if err != nil || roomID == 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid room id")
		return 0, false
	}
	return uint(roomID), true
}
