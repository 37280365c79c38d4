package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"faceattend/internal/ledger"
	"faceattend/internal/model"
	"faceattend/internal/registry"
	"faceattend/internal/sentinel"
	"faceattend/internal/stats"
)

// Handler binds the registry, ledger and stats services to gin routes.
type Handler struct {
	registry *registry.Service
	ledger   *ledger.Service
	stats    *stats.Service
	log      *slog.Logger
}

// New creates a handler.
func New(reg *registry.Service, led *ledger.Service, st *stats.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{registry: reg, ledger: led, stats: st, log: log}
}

// Register mounts the API routes on api.
func (h *Handler) Register(api *gin.RouterGroup) {
	api.GET("/", h.Root)

	api.POST("/persons", h.CreatePerson)
	api.GET("/persons", h.ListPersons)
	api.GET("/persons/:id", h.GetPerson)
	api.DELETE("/persons/:id", h.DeletePerson)

	api.POST("/attendance", h.MarkAttendance)
	api.GET("/attendance/today", h.TodayAttendance)
	api.GET("/attendance/stats", h.AttendanceStats)
	api.GET("/attendance/history/:person_id", h.AttendanceHistory)
	api.GET("/attendance/date/:date", h.AttendanceByDate)
}

// fail maps service errors to HTTP responses. Business errors keep their
// message; anything else is logged and collapsed to a generic 500 so
// storage details never leak to the caller.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Person not found"})
	case errors.Is(err, sentinel.ErrDuplicateEmployeeID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Employee ID already exists"})
	case errors.Is(err, sentinel.ErrAlreadyMarked):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Attendance already marked for today"})
	case errors.Is(err, sentinel.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed", "op", op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// Root reports the API is up.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Face Recognition Attendance System API", "status": "active"})
}

// ---------- Persons ----------

type createPersonRequest struct {
	Name           string `json:"name" binding:"required"`
	EmployeeID     string `json:"employee_id" binding:"required"`
	FaceDescriptor []byte `json:"face_descriptor" binding:"required"`
	Photo          []byte `json:"photo" binding:"required"`
	Role           string `json:"role"`
}

// CreatePerson registers a person with their face data.
func (h *Handler) CreatePerson(c *gin.Context) {
	var req createPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.registry.Register(c.Request.Context(), registry.RegisterInput{
		Name:           req.Name,
		EmployeeID:     req.EmployeeID,
		FaceDescriptor: req.FaceDescriptor,
		Photo:          req.Photo,
		Role:           req.Role,
	})
	if err != nil {
		h.fail(c, "create person", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ListPersons returns all registered persons.
func (h *Handler) ListPersons(c *gin.Context) {
	persons, err := h.registry.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list persons", err)
		return
	}
	if persons == nil {
		persons = []model.Person{}
	}
	c.JSON(http.StatusOK, persons)
}

// GetPerson returns a single person by id.
func (h *Handler) GetPerson(c *gin.Context) {
	p, err := h.registry.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get person", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeletePerson removes a person and their attendance records.
func (h *Handler) DeletePerson(c *gin.Context) {
	if err := h.registry.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "delete person", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Person and their attendance records deleted successfully"})
}

// ---------- Attendance ----------

type markAttendanceRequest struct {
	PersonID   string   `json:"person_id" binding:"required"`
	PersonName string   `json:"person_name" binding:"required"`
	EmployeeID string   `json:"employee_id" binding:"required"`
	Confidence *float64 `json:"confidence" binding:"required"`
	Photo      []byte   `json:"photo"`
}

// MarkAttendance records presence for a recognized person.
func (h *Handler) MarkAttendance(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.ledger.Mark(c.Request.Context(), ledger.MarkInput{
		PersonID:   req.PersonID,
		PersonName: req.PersonName,
		EmployeeID: req.EmployeeID,
		Confidence: *req.Confidence,
		Photo:      req.Photo,
	})
	if err != nil {
		h.fail(c, "mark attendance", err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// TodayAttendance returns the current day's records.
func (h *Handler) TodayAttendance(c *gin.Context) {
	records, err := h.ledger.ListToday(c.Request.Context())
	if err != nil {
		h.fail(c, "today attendance", err)
		return
	}
	if records == nil {
		records = []model.AttendanceRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// AttendanceStats returns the derived presence summary.
func (h *Handler) AttendanceStats(c *gin.Context) {
	s, err := h.stats.Compute(c.Request.Context())
	if err != nil {
		h.fail(c, "attendance stats", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// AttendanceHistory returns a person's records, most recent first.
func (h *Handler) AttendanceHistory(c *gin.Context) {
	records, err := h.ledger.History(c.Request.Context(), c.Param("person_id"))
	if err != nil {
		h.fail(c, "attendance history", err)
		return
	}
	if records == nil {
		records = []model.AttendanceRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// AttendanceByDate returns the records for a YYYY-MM-DD key.
func (h *Handler) AttendanceByDate(c *gin.Context) {
	records, err := h.ledger.ListForDay(c.Request.Context(), c.Param("date"))
	if err != nil {
		h.fail(c, "attendance by date", err)
		return
	}
	if records == nil {
		records = []model.AttendanceRecord{}
	}
	c.JSON(http.StatusOK, records)
}
