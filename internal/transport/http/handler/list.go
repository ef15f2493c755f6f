package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/superlists/internal/domain"
	"github.com/ErlanBelekov/superlists/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

type listUsecaser interface {
	CreateList(ctx context.Context, ownerEmail *string, text string) (*domain.List, error)
	AddItem(ctx context.Context, listID, text string) (*domain.Item, error)
	GetList(ctx context.Context, listID string) (*domain.List, error)
	ListsForOwner(ctx context.Context, ownerEmail string) ([]*domain.List, error)
}

type ListHandler struct {
	listUsecase listUsecaser
	logger      *slog.Logger
}

func NewListHandler(listUsecase listUsecaser, logger *slog.Logger) *ListHandler {
	return &ListHandler{listUsecase: listUsecase, logger: logger.With("component", "list_handler")}
}

// text is validated by the use case so blank input gets the list message
// rather than a binding error.
type itemRequest struct {
	Text string `json:"text"`
}

type itemResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

type listResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Owner     *string        `json:"owner,omitempty"`
	Items     []itemResponse `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
}

func toItemResponse(it domain.Item) itemResponse {
	return itemResponse{ID: it.ID, Text: it.Text, Position: it.Position, CreatedAt: it.CreatedAt}
}

func toListResponse(l *domain.List) listResponse {
	items := make([]itemResponse, 0, len(l.Items))
	for _, it := range l.Items {
		items = append(items, toItemResponse(it))
	}
	return listResponse{
		ID:        l.ID,
		Name:      l.Name(),
		Owner:     l.OwnerEmail,
		Items:     items,
		CreatedAt: l.CreatedAt,
	}
}

// POST /lists
// Anonymous callers get an ownerless list; a logged-in caller owns it.
func (h *ListHandler) Create(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var owner *string
	if user := middleware.UserFromContext(c); user != nil {
		owner = &user.Email
	}

	l, err := h.listUsecase.CreateList(c.Request.Context(), owner, req.Text)
	if err != nil {
		h.writeError(c, "create list", err)
		return
	}

	c.JSON(http.StatusCreated, toListResponse(l))
}

// GET /lists
func (h *ListHandler) Mine(c *gin.Context) {
	user := middleware.UserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
		return
	}

	lists, err := h.listUsecase.ListsForOwner(c.Request.Context(), user.Email)
	if err != nil {
		h.writeError(c, "list lists", err)
		return
	}

	resp := make([]listResponse, 0, len(lists))
	for _, l := range lists {
		resp = append(resp, toListResponse(l))
	}
	c.JSON(http.StatusOK, gin.H{"lists": resp})
}

// GET /lists/:id
func (h *ListHandler) GetByID(c *gin.Context) {
	l, err := h.listUsecase.GetList(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "get list", err)
		return
	}
	c.JSON(http.StatusOK, toListResponse(l))
}

// POST /lists/:id/items
func (h *ListHandler) AddItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.listUsecase.AddItem(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		h.writeError(c, "add item", err)
		return
	}
	c.JSON(http.StatusCreated, toItemResponse(*item))
}

func (h *ListHandler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": errEmptyItem})
	case errors.Is(err, domain.ErrDuplicateItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": errDuplicateItem})
	case errors.Is(err, domain.ErrListNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errListNotFound})
	default:
		h.logger.ErrorContext(c.Request.Context(), op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
