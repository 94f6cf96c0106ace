package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"todo-api/backend/internal/middleware"
	"todo-api/backend/internal/models"
	"todo-api/backend/internal/repositories"
	"todo-api/backend/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type TaskHandler struct {
	tasks *repositories.TaskRepository
}

func NewTaskHandler(tasks *repositories.TaskRepository) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// TaskResponse is the wire shape of a task. The tag relation is asymmetric:
// input takes raw tag ids, output carries the ids plus the resolved tag
// objects in tags_detail.
type TaskResponse struct {
	ID          uuid.UUID       `json:"id"`
	User        uuid.UUID       `json:"user"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    int             `json:"priority"`
	Completed   bool            `json:"completed"`
	CreatedAt   time.Time       `json:"created_at"`
	FinishAt    *time.Time      `json:"finish_at"`
	ParentTask  *uuid.UUID      `json:"parent_task"`
	Attachment  *string         `json:"attachment"`
	RelatedURL  *string         `json:"related_url"`
	Image       *string         `json:"image"`
	ExtraData   json.RawMessage `json:"extra_data"`
	Tags        []uuid.UUID     `json:"tags"`
	TagsDetail  []models.Tag    `json:"tags_detail"`
}

func newTaskResponse(task models.Task) TaskResponse {
	detail := task.Tags
	if detail == nil {
		detail = []models.Tag{}
	}
	return TaskResponse{
		ID:          task.ID,
		User:        task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
		FinishAt:    task.FinishAt,
		ParentTask:  task.ParentTaskID,
		Attachment:  task.Attachment,
		RelatedURL:  task.RelatedURL,
		Image:       task.Image,
		ExtraData:   json.RawMessage(task.ExtraData),
		Tags:        task.TagIDs(),
		TagsDetail:  detail,
	}
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	filter := taskFilterFromQuery(c)
	tasks, err := h.tasks.List(c.Request.Context(), userID, filter)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, newTaskResponse(task))
	}
	c.JSON(http.StatusOK, responses)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	payload, err := validation.DecodePayload(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	data, fieldErrs := validation.ValidateTask(payload)
	tags := h.resolveTaskRelations(c, userID, uuid.Nil, data, fieldErrs)
	if !fieldErrs.Empty() {
		c.JSON(http.StatusBadRequest, fieldErrs)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, taskFromData(data), tags)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		handleTaskError(c, repositories.ErrNotFound)
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), userID, id)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		handleTaskError(c, repositories.ErrNotFound)
		return
	}

	payload, err := validation.DecodePayload(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	data, fieldErrs := validation.ValidateTask(payload)
	tags := h.resolveTaskRelations(c, userID, id, data, fieldErrs)
	if !fieldErrs.Empty() {
		c.JSON(http.StatusBadRequest, fieldErrs)
		return
	}

	updated := taskFromData(data)
	updated.ID = id

	var replacement *[]models.Tag
	if data.Tags != nil {
		replacement = &tags
	}

	task, err := h.tasks.Update(c.Request.Context(), userID, updated, replacement)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		handleTaskError(c, repositories.ErrNotFound)
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), userID, id); err != nil {
		handleTaskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteTask marks an owned task as completed. The action is idempotent
// and the not-found body is fixed.
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	task, err := h.tasks.MarkCompleted(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}

// resolveTaskRelations turns validated tag and parent ids into rows owned by
// the caller, folding unresolved ids into the field error map so relation
// failures surface together with the rest of the validation report.
// selfID is the task being updated, or uuid.Nil on create; a task may never
// name itself as parent.
func (h *TaskHandler) resolveTaskRelations(c *gin.Context, userID, selfID uuid.UUID, data *validation.TaskData, fieldErrs validation.FieldErrors) []models.Tag {
	var tags []models.Tag
	if data.Tags != nil {
		resolved, missing, err := h.tasks.ResolveTags(c.Request.Context(), userID, *data.Tags)
		if err != nil {
			log.Printf("resolving tags: %v", err)
			fieldErrs.Add("tags", "Could not resolve tags.")
			return nil
		}
		for _, id := range missing {
			fieldErrs.Add("tags", validation.MsgInvalidPK(id.String()))
		}
		tags = resolved
	}

	if data.ParentTaskID != nil {
		if *data.ParentTaskID == selfID {
			fieldErrs.Add("parent_task", validation.MsgInvalidPK(data.ParentTaskID.String()))
		} else if _, err := h.tasks.Get(c.Request.Context(), userID, *data.ParentTaskID); err != nil {
			fieldErrs.Add("parent_task", validation.MsgInvalidPK(data.ParentTaskID.String()))
		}
	}
	return tags
}

func taskFromData(data *validation.TaskData) models.Task {
	return models.Task{
		Title:        data.Title,
		Description:  data.Description,
		Priority:     data.Priority,
		Completed:    data.Completed,
		FinishAt:     data.FinishAt,
		ParentTaskID: data.ParentTaskID,
		Attachment:   data.Attachment,
		RelatedURL:   data.RelatedURL,
		Image:        data.Image,
		ExtraData:    []byte(data.ExtraData),
	}
}

func taskFilterFromQuery(c *gin.Context) repositories.TaskFilter {
	var filter repositories.TaskFilter

	if raw := c.Query("priority"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.Priority = &n
		}
	}
	if raw := c.Query("completed"); raw != "" {
		if b, err := strconv.ParseBool(strings.ToLower(raw)); err == nil {
			filter.Completed = &b
		}
	}
	if raw := c.Query("created_at"); raw != "" {
		if ts, err := validation.ParseDatetime(raw); err == nil {
			filter.CreatedAt = &ts
		}
	}
	if raw := c.Query("finish_at"); raw != "" {
		if ts, err := validation.ParseDatetime(raw); err == nil {
			filter.FinishAt = &ts
		}
	}
	filter.Search = c.Query("search")
	if raw := c.Query("ordering"); raw != "" {
		filter.Ordering = strings.Split(raw, ",")
	}
	return filter
}

func handleTaskError(c *gin.Context, err error) {
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	log.Printf("task request failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process task request"})
}
