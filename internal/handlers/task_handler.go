package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"taskbuddy-api/internal/models"
	"taskbuddy-api/internal/realtime"
	"taskbuddy-api/internal/storage"
	"taskbuddy-api/internal/tasks"

	"github.com/gin-gonic/gin"
)

// TaskRequest is the add/edit form. It is accepted as JSON or as
// multipart/form-data with an optional "file" image. On edit, an absent
// fileUrl keeps the stored attachment and an empty one clears it.
type TaskRequest struct {
	Title       string              `json:"title" form:"title" binding:"required"`
	Description string              `json:"description" form:"description"`
	Category    models.TaskCategory `json:"category" form:"category"`
	DueDate     string              `json:"dueDate" form:"dueDate" binding:"required"`
	Status      models.TaskStatus   `json:"status" form:"status" binding:"required"`
	FileURL     *string             `json:"fileUrl" form:"fileUrl"`
	Order       *int                `json:"order" form:"order"`
}

func (r TaskRequest) draft() tasks.Draft {
	return tasks.Draft{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		DueDate:     r.DueDate,
		Status:      r.Status,
		FileURL:     r.fileURL(),
		Order:       r.Order,
	}
}

func (r TaskRequest) fileURL() string {
	if r.FileURL == nil {
		return ""
	}
	return *r.FileURL
}

// UpdateTaskStatusRequest represents a minimal request to change status
type UpdateTaskStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

// TaskHandler serves the task endpoints.
type TaskHandler struct {
	store     *tasks.Store
	blobs     storage.BlobStore
	hub       *realtime.Hub
	maxUpload int64
}

// NewTaskHandler wires the task endpoints to their collaborators.
func NewTaskHandler(store *tasks.Store, blobs storage.BlobStore, hub *realtime.Hub, maxUpload int64) *TaskHandler {
	return &TaskHandler{
		store:     store,
		blobs:     blobs,
		hub:       hub,
		maxUpload: maxUpload,
	}
}

func requireUser(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in token",
		})
		return "", false
	}
	return userID, true
}

// respondError maps domain and storage errors to HTTP responses. Anything
// unrecognised is logged and reported with the fallback message.
func respondError(c *gin.Context, err error, fallback string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": storage.ErrTooLarge.Error()})
	case errors.Is(err, tasks.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, tasks.ErrInvalidTask), errors.Is(err, tasks.ErrFilterActive):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, tasks.ErrNoUser):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
	case errors.Is(err, storage.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrNotImage):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrBadKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// bindError reports a request that could not be bound. A body cut off by
// the upload limit is 413, anything else 400.
func bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": storage.ErrTooLarge.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error": err.Error(),
	})
}

func filterFromQuery(c *gin.Context) tasks.Filter {
	searchDesc, _ := strconv.ParseBool(c.Query("searchDescription"))
	return tasks.Filter{
		Search:            c.Query("search"),
		Category:          c.Query("category"),
		DueDate:           c.Query("dueDate"),
		SearchDescription: searchDesc,
	}
}

// saveAttachment stores the "file" part of a multipart request, if any.
func (h *TaskHandler) saveAttachment(c *gin.Context, userID string) (*storage.Object, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if fh.Size > h.maxUpload {
		return nil, storage.ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	obj, err := h.blobs.Put(c.Request.Context(), userID, fh.Filename, f)
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

func (h *TaskHandler) discardAttachment(c *gin.Context, obj *storage.Object) {
	if obj == nil {
		return
	}
	if err := h.blobs.Delete(c.Request.Context(), obj.Key); err != nil {
		log.Printf("discard attachment %s: %v", obj.Key, err)
	}
}

func (h *TaskHandler) limitBody(c *gin.Context) {
	// room for the form fields on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+1<<20)
}

/*
*
GetTasks handles GET /api/tasks
Returns the caller's tasks narrowed by the optional search, category and
dueDate query params, both as a flat list and grouped by status.
refresh=true reloads from the database instead of the in-memory list.
*/
func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var (
		all []models.Task
		err error
	)
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		all, err = h.store.Load(c.Request.Context(), userID)
	} else {
		all, err = h.store.Tasks(c.Request.Context(), userID)
	}
	if err != nil {
		respondError(c, err, "Failed to fetch tasks")
		return
	}

	filter := filterFromQuery(c)
	visible := tasks.Apply(all, filter)

	c.JSON(http.StatusOK, gin.H{
		"tasks":        visible,
		"groups":       tasks.Group(visible),
		"count":        len(visible), // number of tasks passing the filter
		"total":        len(all),     // all of the caller's tasks
		"filterActive": filter.Active(),
	})
}

// GetTaskByID handles GET /api/tasks/:id
// Returns a single task owned by the authenticated user
func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	task, err := h.store.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch task")
		return
	}
	c.JSON(http.StatusOK, task)
}

/*
*
CreateTask handles POST /api/tasks
Creates a new task for the authenticated user, uploading the attached image
first when the request is multipart.
*/
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	h.limitBody(c)

	var req TaskRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	obj, err := h.saveAttachment(c, userID)
	if err != nil {
		respondError(c, err, "Failed to upload file")
		return
	}
	d := req.draft()
	if obj != nil {
		d.FileURL = obj.URL
	}

	task, err := h.store.Create(c.Request.Context(), userID, d)
	if err != nil {
		h.discardAttachment(c, obj)
		respondError(c, err, "Failed to create task")
		return
	}

	h.hub.Publish(realtime.Event{Type: realtime.EventTaskCreated, UserID: userID, TaskID: task.ID, Task: &task})
	c.JSON(http.StatusCreated, task)
}

// UpdateTask handles PUT /api/tasks/:id
// Overwrites every editable field of a task owned by the authenticated user
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	h.limitBody(c)

	var req TaskRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	obj, err := h.saveAttachment(c, userID)
	if err != nil {
		respondError(c, err, "Failed to upload file")
		return
	}

	next := models.Task{
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		DueDate:     req.DueDate,
		Status:      req.Status,
		FileURL:     req.fileURL(),
		Order:       req.Order,
	}
	switch {
	case obj != nil:
		next.FileURL = obj.URL
	case req.FileURL == nil:
		current, err := h.store.Get(c.Request.Context(), userID, next.ID)
		if err != nil {
			respondError(c, err, "Failed to update task")
			return
		}
		next.FileURL = current.FileURL
	}

	task, err := h.store.Modify(c.Request.Context(), userID, next)
	if err != nil {
		h.discardAttachment(c, obj)
		respondError(c, err, "Failed to update task")
		return
	}

	h.hub.Publish(realtime.Event{Type: realtime.EventTaskUpdated, UserID: userID, TaskID: task.ID, Task: &task})
	c.JSON(http.StatusOK, task)
}

// UpdateTaskStatus handles PATCH /api/tasks/:id/status
// Updates only the status of a task owned by the authenticated user
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.store.SetStatus(c.Request.Context(), userID, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err, "Failed to update status")
		return
	}

	h.hub.Publish(realtime.Event{Type: realtime.EventTaskUpdated, UserID: userID, TaskID: task.ID, Task: &task})
	c.JSON(http.StatusOK, task)
}

// MoveTask handles POST /api/tasks/:id/move
// Applies a board drag-and-drop. The move is refused when the body's
// filterActive flag or any filter query param is set.
func (h *TaskHandler) MoveTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req tasks.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if filterFromQuery(c).Active() {
		req.FilterActive = true
	}

	res, err := h.store.Move(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to move task")
		return
	}

	if !res.NoOp {
		h.hub.Publish(realtime.Event{Type: realtime.EventTaskMoved, UserID: userID, TaskID: res.Task.ID, Task: &res.Task, Tasks: res.Changed})
	}
	c.JSON(http.StatusOK, res)
}

// BulkTasks handles POST /api/tasks/bulk
// Deletes or re-statuses the selected tasks; per-task failures are reported
// in the results rather than failing the request.
func (h *TaskHandler) BulkTasks(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req tasks.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids are required"})
		return
	}

	results, err := h.store.Bulk(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to apply bulk action")
		return
	}

	evtType := realtime.EventTaskUpdated
	if req.Action == tasks.BulkDelete {
		evtType = realtime.EventTaskDeleted
	}
	succeeded := 0
	for _, r := range results {
		if r.OK {
			succeeded++
			h.hub.Publish(realtime.Event{Type: evtType, UserID: userID, TaskID: r.ID, Task: r.Task})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"results":   results,
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	})
}

// DeleteTask handles DELETE /api/tasks/:id
// Deletes a task owned by the authenticated user
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	taskID := c.Param("id")
	if err := h.store.Remove(c.Request.Context(), userID, taskID); err != nil {
		respondError(c, err, "Failed to delete task")
		return
	}

	h.hub.Publish(realtime.Event{Type: realtime.EventTaskDeleted, UserID: userID, TaskID: taskID})
	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
		"id":      taskID,
	})
}

// GetStats handles GET /api/stats
// Returns counts of the caller's tasks by status group
func (h *TaskHandler) GetStats(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	stats, err := h.store.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to compute stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// UploadFile handles POST /api/uploads
// Stores a single image and returns its durable URL
func (h *TaskHandler) UploadFile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	h.limitBody(c)

	obj, err := h.saveAttachment(c, userID)
	if err != nil {
		respondError(c, err, "Failed to upload file")
		return
	}
	if obj == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a multipart \"file\" field is required"})
		return
	}
	c.JSON(http.StatusCreated, obj)
}
