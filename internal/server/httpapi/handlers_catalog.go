package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/taskmanager/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (h *handler) listStatuses(c *gin.Context) {
	list, err := h.Statuses.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	setTotal(c, len(list))
	c.JSON(http.StatusOK, mapAll(list, newTaskStatusJSON))
}

func (h *handler) getStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	st, err := h.Statuses.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newTaskStatusJSON(st))
}

func (h *handler) createStatus(c *gin.Context) {
	var in services.TaskStatusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	st, err := h.Statuses.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, newTaskStatusJSON(st))
}

func (h *handler) updateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var p services.TaskStatusPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	st, err := h.Statuses.Update(c.Request.Context(), id, p)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newTaskStatusJSON(st))
}

func (h *handler) deleteStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Statuses.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) listLabels(c *gin.Context) {
	list, err := h.Labels.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	setTotal(c, len(list))
	c.JSON(http.StatusOK, mapAll(list, newLabelJSON))
}

func (h *handler) getLabel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	l, err := h.Labels.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newLabelJSON(l))
}

func (h *handler) createLabel(c *gin.Context) {
	var in services.LabelInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.Labels.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, newLabelJSON(l))
}

func (h *handler) updateLabel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var p services.LabelPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.Labels.Update(c.Request.Context(), id, p)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newLabelJSON(l))
}

func (h *handler) deleteLabel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Labels.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
