package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/dmitrijs2005/taskmanager/internal/server/services"
	"github.com/gin-gonic/gin"
)

func queryID(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s %q", common.ErrValidation, name, raw)
	}
	return &n, nil
}

func taskFilter(c *gin.Context) (models.TaskFilter, error) {
	f := models.TaskFilter{
		TitleCont: c.Query("titleCont"),
		Status:    c.Query("status"),
	}
	var err error
	if f.AssigneeID, err = queryID(c, "assigneeId"); err != nil {
		return f, err
	}
	if f.LabelID, err = queryID(c, "labelId"); err != nil {
		return f, err
	}
	return f, nil
}

func (h *handler) listTasks(c *gin.Context) {
	f, err := taskFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.Tasks.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	setTotal(c, len(list))
	c.JSON(http.StatusOK, mapAll(list, newTaskJSON))
}

func (h *handler) getTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := h.Tasks.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newTaskJSON(t))
}

func (h *handler) createTask(c *gin.Context) {
	var in services.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.Tasks.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, newTaskJSON(t))
}

func (h *handler) updateTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var p services.TaskPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.Tasks.Update(c.Request.Context(), id, p)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newTaskJSON(t))
}

func (h *handler) deleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Tasks.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
