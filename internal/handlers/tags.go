package handlers

import (
	"errors"
	"log"
	"net/http"

	"todo-api/backend/internal/middleware"
	"todo-api/backend/internal/repositories"
	"todo-api/backend/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type TagHandler struct {
	tags *repositories.TagRepository
}

func NewTagHandler(tags *repositories.TagRepository) *TagHandler {
	return &TagHandler{tags: tags}
}

func (h *TagHandler) ListTags(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	var filter repositories.TagFilter
	if raw := c.Query("name"); raw != "" {
		filter.Name = &raw
	}
	if raw := c.Query("user"); raw != "" {
		if id, err := uuid.FromString(raw); err == nil {
			filter.User = &id
		}
	}
	filter.Search = c.Query("search")

	tags, err := h.tags.List(c.Request.Context(), userID, filter)
	if err != nil {
		handleTagError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) CreateTag(c *gin.Context) {
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

	data, fieldErrs := validation.ValidateTag(payload)
	if !fieldErrs.Empty() {
		c.JSON(http.StatusBadRequest, fieldErrs)
		return
	}

	tag, err := h.tags.Create(c.Request.Context(), userID, data.Name)
	if err != nil {
		handleTagError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *TagHandler) GetTag(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		handleTagError(c, repositories.ErrNotFound)
		return
	}

	tag, err := h.tags.Get(c.Request.Context(), userID, id)
	if err != nil {
		handleTagError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *TagHandler) UpdateTag(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		handleTagError(c, repositories.ErrNotFound)
		return
	}

	payload, err := validation.DecodePayload(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	data, fieldErrs := validation.ValidateTag(payload)
	if !fieldErrs.Empty() {
		c.JSON(http.StatusBadRequest, fieldErrs)
		return
	}

	tag, err := h.tags.Update(c.Request.Context(), userID, id, data.Name)
	if err != nil {
		handleTagError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *TagHandler) DeleteTag(c *gin.Context) {
	userID, ok := middleware.CurrentUser(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		handleTagError(c, repositories.ErrNotFound)
		return
	}

	if err := h.tags.Delete(c.Request.Context(), userID, id); err != nil {
		handleTagError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func handleTagError(c *gin.Context, err error) {
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "tag not found"})
		return
	}
	log.Printf("tag request failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process tag request"})
}
