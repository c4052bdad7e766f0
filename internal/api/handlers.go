package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/constants"
	apperrors "github.com/julianstephens/neurozen/internal/errors"
	"github.com/julianstephens/neurozen/internal/ledger"
	"github.com/julianstephens/neurozen/internal/logger"
	"github.com/julianstephens/neurozen/internal/service"
	"github.com/julianstephens/neurozen/internal/tasks"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// writeError maps domain errors to status codes. Business outcomes such as
// an insufficient balance never reach here; they are 200 responses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrTaskCompleted), errors.Is(err, apperrors.ErrRewardInactive):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrGenerationFailed):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "requestID", c.GetString(requestIDKey), "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

type completeTaskResponse struct {
	Awarded     bool `json:"awarded"`
	PointsDelta int  `json:"points_delta"`
	Balance     int  `json:"balance"`
	StreakDays  int  `json:"streak_days"`
}

func (h *Handler) CompleteTask(c *gin.Context) {
	res, err := h.svc.CompleteTask(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, completeTaskResponse{
		Awarded:     res.Awarded,
		PointsDelta: res.PointsDelta,
		Balance:     res.Balance,
		StreakDays:  res.Streak.Days,
	})
}

func (h *Handler) StartTask(c *gin.Context) {
	started, err := h.svc.StartTask(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"started": started})
}

type createTaskRequest struct {
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	Priority    constants.Priority `json:"priority"`
	DueDate     calendar.Day       `json:"due_date"`
	Points      int                `json:"points"`
}

func (h *Handler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	task, err := h.svc.CreateTask(c.Request.Context(), currentUser(c), tasks.NewTask{
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Points:      req.Points,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) ListTasks(c *gin.Context) {
	all := c.Query("all") == "true"
	list, err := h.svc.Tasks(c.Request.Context(), currentUser(c), all)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": list})
}

func (h *Handler) ClaimReward(c *gin.Context) {
	res, err := h.svc.ClaimReward(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": res.Outcome, "balance": res.Balance})
}

type createRewardRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

func (h *Handler) CreateReward(c *gin.Context) {
	var req createRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	r, err := h.svc.CreateReward(c.Request.Context(), currentUser(c), req.Title, req.Description, req.Points)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) ListRewards(c *gin.Context) {
	list, err := h.svc.Rewards(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards": list})
}

type startSessionRequest struct {
	TaskID *string `json:"task_id"`
}

func (h *Handler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}
	s, err := h.svc.StartSession(c.Request.Context(), currentUser(c), req.TaskID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": s.ID, "duration": s.Duration, "start_time": s.StartTime})
}

type endSessionRequest struct {
	Note *string `json:"note"`
}

func (h *Handler) EndSession(c *gin.Context) {
	var req endSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}
	res, err := h.svc.EndSession(c.Request.Context(), currentUser(c), c.Param("id"), req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ended": res.Ended})
}

func (h *Handler) SessionHistory(c *gin.Context) {
	days := 7
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 366 {
			badRequest(c, "days must be between 1 and 366")
			return
		}
		days = n
	}
	groups, err := h.svc.SessionHistory(c.Request.Context(), currentUser(c), days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": groups})
}

func (h *Handler) Summary(c *gin.Context) {
	s, err := h.svc.GetDailySummary(c.Request.Context(), currentUser(c), calendar.Day(c.Query("day")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": s.Day, "content": s.Content})
}

func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.svc.Dashboard(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

type logMoodRequest struct {
	Mood  constants.Mood `json:"mood" binding:"required"`
	Notes string         `json:"notes"`
}

func (h *Handler) LogMood(c *gin.Context) {
	var req logMoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	m, err := h.svc.LogMood(c.Request.Context(), currentUser(c), req.Mood, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) Ledger(c *gin.Context) {
	limit := ledger.DefaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}
	entries, err := h.svc.Ledger(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": entries})
}
