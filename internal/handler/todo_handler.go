package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mtodo/internal/model"
	"github.com/xxxsen/mtodo/internal/pkg/response"
	"github.com/xxxsen/mtodo/internal/query"
	"github.com/xxxsen/mtodo/internal/service"
)

type TodoHandler struct {
	todos       *service.TodoService
	maxPageSize int
}

func NewTodoHandler(todos *service.TodoService, maxPageSize int) *TodoHandler {
	return &TodoHandler{todos: todos, maxPageSize: maxPageSize}
}

func (h *TodoHandler) List(c *gin.Context) {
	params := query.Parse(c.Request.URL.Query(), h.maxPageSize)
	page, err := h.todos.List(c.Request.Context(), currentUser(c).ID, params)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"data":     model.TodosToMaps(page.Data),
		"page":     page.Page,
		"pageSize": page.PageSize,
		"total":    page.Total,
	})
}

func (h *TodoHandler) Get(c *gin.Context) {
	id, ok := parseTodoID(c)
	if !ok {
		return
	}
	todo, err := h.todos.Get(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, todo.ToMap())
}

func (h *TodoHandler) Create(c *gin.Context) {
	var req service.TodoInput
	if !bindJSON(c, &req) {
		return
	}
	todo, err := h.todos.Create(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, todo.ToMap())
}

func (h *TodoHandler) Update(c *gin.Context) {
	id, ok := parseTodoID(c)
	if !ok {
		return
	}
	var req service.TodoInput
	if !bindJSON(c, &req) {
		return
	}
	todo, err := h.todos.Update(c.Request.Context(), currentUser(c).ID, id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, todo.ToMap())
}

func (h *TodoHandler) Delete(c *gin.Context) {
	id, ok := parseTodoID(c)
	if !ok {
		return
	}
	todo, err := h.todos.Delete(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, todo.ToMap())
}
