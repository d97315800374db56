package handlers

import (
	"errors"
	"net/http"

	"task_api/internal/models"
	"task_api/internal/service"

	"github.com/gin-gonic/gin"
)

type taskRequest struct {
	Name string `json:"name" binding:"notblank" msg:"Nombre del proyecto obligatorio" example:"buy milk"`
}

type taskListResponse struct {
	OK    bool          `json:"ok" example:"true"`
	Tasks []models.Task `json:"tareas"`
}

type taskCreatedResponse struct {
	OK   bool        `json:"ok" example:"true"`
	Msg  string      `json:"msg"`
	Task models.Task `json:"nuevaTarea"`
}

type taskResponse struct {
	OK   bool        `json:"ok" example:"true"`
	Msg  string      `json:"msg"`
	Task models.Task `json:"tarea"`
}

// readTasks godoc
// @Summary      List the caller's tasks, newest first
// @Tags         task
// @Produce      json
// @Security     TokenAuth
// @Success      200  {object}  taskListResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /task/read [get]
func (h *Handler) readTasks(c *gin.Context, caller models.Identity) {
	tasks, err := h.services.ListMine(c.Request.Context(), caller)
	if err != nil {
		h.logAndJSONError(c, http.StatusNotFound, msgTasksNotFound, "task_list_failed", err, "user_id", caller.UserID)
		return
	}
	c.JSON(http.StatusOK, taskListResponse{OK: true, Tasks: tasks})
}

// createTask godoc
// @Summary      Create a task owned by the caller
// @Tags         task
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        body  body      taskRequest  true  "Task"
// @Success      200   {object}  taskCreatedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /task/create [post]
func (h *Handler) createTask(c *gin.Context, caller models.Identity) {
	req := payload[taskRequest](c)

	task, err := h.services.Create(c.Request.Context(), caller, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmptyName) {
			h.rejectBlankName(c, err)
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, msgTaskNotCreated, "task_create_failed", err, "user_id", caller.UserID)
		return
	}
	c.JSON(http.StatusOK, taskCreatedResponse{OK: true, Msg: msgTaskCreated, Task: task})
}

// updateTask godoc
// @Summary      Rename a task
// @Tags         task
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        id    path      string       true  "Task id"
// @Param        body  body      taskRequest  true  "Task"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /task/update/{id} [put]
func (h *Handler) updateTask(c *gin.Context, caller models.Identity) {
	req := payload[taskRequest](c)
	id := c.Param("id")

	task, err := h.services.Update(c.Request.Context(), caller, id, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmptyName) {
			h.rejectBlankName(c, err)
			return
		}
		h.logAndJSONError(c, http.StatusNotFound, msgTaskNotUpdated, "task_update_failed", err,
			"user_id", caller.UserID, "task_id", id)
		return
	}
	c.JSON(http.StatusOK, taskResponse{OK: true, Msg: msgTaskUpdated, Task: task})
}

// deleteTask godoc
// @Summary      Delete a task
// @Tags         task
// @Produce      json
// @Security     TokenAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  taskResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /task/delete/{id} [delete]
func (h *Handler) deleteTask(c *gin.Context, caller models.Identity) {
	id := c.Param("id")

	task, err := h.services.Delete(c.Request.Context(), caller, id)
	if err != nil {
		h.logAndJSONError(c, http.StatusNotFound, msgTaskNotDeleted, "task_delete_failed", err,
			"user_id", caller.UserID, "task_id", id)
		return
	}
	c.JSON(http.StatusOK, taskResponse{OK: true, Msg: msgTaskDeleted, Task: task})
}

func (h *Handler) rejectBlankName(c *gin.Context, err error) {
	h.log.Infow("task_blank_name", "err", err, "request_id", c.GetString(ctxRequestIDKey))
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Msg:    msgInvalidInput,
		Errors: []fieldError{{Field: "name", Msg: messageFor[taskRequest]("name", "notblank")}},
	})
}
