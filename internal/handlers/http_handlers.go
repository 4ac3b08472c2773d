package handlers

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"roulette/internal/models"
	"roulette/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

// HTTPHandler exposes the roulette command surface over HTTP.
type HTTPHandler struct {
	service *services.RouletteService
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(service *services.RouletteService) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type addParticipantRequest struct {
	Name string `json:"name" binding:"required"`
}

type addTaskRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// bulkRequest carries one name per line. Empty text is a valid batch that
// adds nothing.
type bulkRequest struct {
	Text string `json:"text"`
}

// RegisterRoutes registers all the application routes.
func (h *HTTPHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/healthz", h.Health)

	api := router.Group("/api")
	api.GET("/state", h.GetState)

	api.GET("/participants", h.ListParticipants)
	api.POST("/participants", h.AddParticipant)
	api.POST("/participants/bulk", h.AddParticipantsBulk)
	api.POST("/participants/csv", h.UploadParticipantsCSV)
	api.DELETE("/participants", h.ClearParticipants)
	api.DELETE("/participants/:id", h.RemoveParticipant)

	api.GET("/tasks", h.ListTasks)
	api.POST("/tasks", h.AddTask)
	api.POST("/tasks/bulk", h.AddTaskBulk)
	api.POST("/tasks/csv", h.UploadTasksCSV)
	api.DELETE("/tasks", h.ClearTasks)
	api.DELETE("/tasks/:id", h.RemoveTask)

	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.UpdateSettings)

	api.POST("/draw", h.Draw)
	api.POST("/resolve", h.Resolve)

	api.GET("/history", h.GetHistory)
	api.GET("/history/export", h.ExportHistoryCSV)
	api.DELETE("/history", h.ClearHistory)
}

// respondError maps a service error to an HTTP status and error code.
func respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, services.ErrValidation):
		status, code = http.StatusBadRequest, "validation"
	case errors.Is(err, services.ErrEmptyPool):
		status, code = http.StatusUnprocessableEntity, "empty_pool"
	case errors.Is(err, services.ErrNoTasksRemaining):
		status, code = http.StatusUnprocessableEntity, "no_tasks_remaining"
	case errors.Is(err, services.ErrAlreadyInProgress):
		status, code = http.StatusConflict, "already_in_progress"
	case errors.Is(err, services.ErrInvalidState):
		status, code = http.StatusConflict, "invalid_state"
	case errors.Is(err, services.ErrPersistence):
		code = "persistence"
	}
	if status == http.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

// Health reports that the server is up.
func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetState returns the whole roulette state for an initial page render.
func (h *HTTPHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Snapshot())
}

// ListParticipants returns the participants in insertion order.
func (h *HTTPHandler) ListParticipants(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetParticipants())
}

// AddParticipant handles adding a single participant.
func (h *HTTPHandler) AddParticipant(c *gin.Context) {
	var req addParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
		return
	}
	p, err := h.service.AddParticipant(req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// AddParticipantsBulk adds one participant per line of the submitted text.
func (h *HTTPHandler) AddParticipantsBulk(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
		return
	}
	added, skipped, err := h.service.AddParticipantsBulk(req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"added": added, "skipped": skipped})
}

// UploadParticipantsCSV imports participants from the first column of an
// uploaded CSV file.
func (h *HTTPHandler) UploadParticipantsCSV(c *gin.Context) {
	records, ok := readCSVUpload(c, "participantCSV")
	if !ok {
		return
	}
	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, record[0])
	}
	added, skipped, err := h.service.ImportParticipants(names)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"added": added, "skipped": skipped})
}

// RemoveParticipant removes one participant by id.
func (h *HTTPHandler) RemoveParticipant(c *gin.Context) {
	if err := h.service.RemoveParticipant(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearParticipants removes every participant.
func (h *HTTPHandler) ClearParticipants(c *gin.Context) {
	if err := h.service.ClearParticipants(); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListTasks returns all tasks, optionally filtered by ?status=.
func (h *HTTPHandler) ListTasks(c *gin.Context) {
	tasks := h.service.GetTasks()
	status := models.TaskStatus(c.Query("status"))
	if status == "" {
		c.JSON(http.StatusOK, tasks)
		return
	}
	filtered := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == status {
			filtered = append(filtered, t)
		}
	}
	c.JSON(http.StatusOK, filtered)
}

// AddTask handles adding a single task.
func (h *HTTPHandler) AddTask(c *gin.Context) {
	var req addTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
		return
	}
	t, err := h.service.AddTask(req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// AddTaskBulk adds one task per line of the submitted text.
func (h *HTTPHandler) AddTaskBulk(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
		return
	}
	added, skipped, err := h.service.AddTaskBulk(req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"added": added, "skipped": skipped})
}

// UploadTasksCSV imports tasks from an uploaded CSV file. The first column
// is the name and the optional second column the description.
func (h *HTTPHandler) UploadTasksCSV(c *gin.Context) {
	records, ok := readCSVUpload(c, "taskCSV")
	if !ok {
		return
	}
	inputs := make([]services.TaskInput, 0, len(records))
	for _, record := range records {
		in := services.TaskInput{Name: record[0]}
		if len(record) > 1 {
			in.Description = record[1]
		}
		inputs = append(inputs, in)
	}
	added, skipped, err := h.service.ImportTasks(inputs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"added": added, "skipped": skipped})
}

// RemoveTask removes one pending task by id.
func (h *HTTPHandler) RemoveTask(c *gin.Context) {
	if err := h.service.RemoveTask(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearTasks removes every task.
func (h *HTTPHandler) ClearTasks(c *gin.Context) {
	if err := h.service.ClearTasks(); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSettings returns the current settings.
func (h *HTTPHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetSettings())
}

// UpdateSettings applies a partial settings update. A rejected field
// rejects the whole request.
func (h *HTTPHandler) UpdateSettings(c *gin.Context) {
	var patch services.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
		return
	}
	settings, err := h.service.UpdateSettings(patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Draw performs one draw. The client shows the result and then calls
// /api/resolve once the display duration has elapsed.
func (h *HTTPHandler) Draw(c *gin.Context) {
	result, err := h.service.Draw()
	if err != nil && result == nil {
		respondError(c, err)
		return
	}
	settings := h.service.GetSettings()
	body := gin.H{
		"result":                       result,
		"showWinnerModal":              settings.ShowWinnerModal,
		"winnerDisplayDurationSeconds": settings.WinnerDisplayDurationSeconds,
	}
	if err != nil {
		logger.Errorf("Draw applied but not persisted: %v", err)
		body["warning"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

// Resolve ends the display phase of the outstanding draw.
func (h *HTTPHandler) Resolve(c *gin.Context) {
	h.service.Resolve()
	c.Status(http.StatusNoContent)
}

// GetHistory returns the draw history, newest first.
func (h *HTTPHandler) GetHistory(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetHistory())
}

// ClearHistory removes every history entry.
func (h *HTTPHandler) ClearHistory(c *gin.Context) {
	if err := h.service.ClearHistory(); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportHistoryCSV handles the request to download the history as a CSV file.
func (h *HTTPHandler) ExportHistoryCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename=roulette_history.csv")

	// Add BOM to ensure UTF-8 compatibility in Excel
	c.Writer.Write([]byte("\xef\xbb\xbf"))

	w := csv.NewWriter(c.Writer)

	if err := w.Write([]string{"timestamp", "mode", "participant_id", "participant_name", "task_id", "task_name", "task_description"}); err != nil {
		logger.Infof("Error writing CSV header: %v", err)
		c.String(http.StatusInternalServerError, "Error writing CSV")
		return
	}

	for _, e := range h.service.GetHistory() {
		row := []string{
			e.Timestamp.Format(time.RFC3339),
			string(e.Mode),
			e.WinnerParticipantID,
			e.WinnerParticipantName,
			e.TaskID,
			e.TaskName,
			e.TaskDescription,
		}
		if err := w.Write(row); err != nil {
			logger.Infof("Error writing CSV row: %v", err)
			c.String(http.StatusInternalServerError, "Error writing CSV")
			return
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		logger.Infof("Error flushing CSV writer: %v", err)
		c.String(http.StatusInternalServerError, "Error writing CSV")
	}
}

// readCSVUpload reads every non-empty record of the uploaded form file.
// It writes the error response itself and reports false on failure.
func readCSVUpload(c *gin.Context, field string) ([][]string, bool) {
	file, _, err := c.Request.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error retrieving file: " + err.Error(), "code": "validation"})
		return nil, false
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Error reading CSV: " + err.Error(), "code": "validation"})
			return nil, false
		}
		if len(record) == 0 {
			logger.Infof("Skipping empty CSV record")
			continue
		}
		if len(records) == 0 {
			// Files written by ExportHistoryCSV and Excel start with a BOM.
			record[0] = strings.TrimPrefix(record[0], "\ufeff")
		}
		records = append(records, record)
	}
	return records, true
}
