package transport

import (
	"net/http"
	"strconv"

	"items-api/internal/apperror"
	"items-api/internal/domain"
	"items-api/internal/middleware"
	"items-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// CreateItemRequest represents the create item payload
type CreateItemRequest struct {
	Name        *string          `json:"name" validate:"required,min=1"`
	Description *string          `json:"description"`
	Price       *float64         `json:"price" validate:"required,gte=0"`
	Category    *domain.Category `json:"category" validate:"omitempty,oneof=electronics clothing books other"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0,lte=2147483647"`
}

func (req CreateItemRequest) input() domain.CreateItemInput {
	return domain.CreateItemInput{
		Name:        *req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	}
}

// UpdateItemRequest represents the update item payload. Every field is optional.
type UpdateItemRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1"`
	Description *string          `json:"description"`
	Price       *float64         `json:"price" validate:"omitempty,gte=0"`
	Category    *domain.Category `json:"category" validate:"omitempty,oneof=electronics clothing books other"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0,lte=2147483647"`
}

func (req UpdateItemRequest) patch() domain.ItemPatch {
	return domain.ItemPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	}
}

// ListItemsResponse is one page of items
type ListItemsResponse struct {
	Items   []*domain.Item `json:"items"`
	Count   int            `json:"count"`
	HasMore bool           `json:"hasMore"`
	// NextPage is null on the last page
	NextPage *string `json:"nextPage"`
}

// ItemHandler handles HTTP requests for item operations
type ItemHandler struct {
	itemService service.ItemService
	logger      *zap.Logger
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(itemService service.ItemService, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
		logger:      logger,
	}
}

// RegisterRoutes registers all item routes
func (h *ItemHandler) RegisterRoutes(r chi.Router, mws ...func(http.Handler) http.Handler) {
	r.Route("/items", func(r chi.Router) {
		r.Use(mws...)

		r.Post("/", h.CreateItem)
		r.Get("/", h.ListItems)
		r.Get("/{id}", h.GetItem)
		r.Put("/{id}", h.UpdateItem)
		r.Patch("/{id}", h.UpdateItem)
		r.Delete("/{id}", h.DeleteItem)
	})
}

// fail logs a failure at a level matching its class and writes the envelope
func (h *ItemHandler) fail(w http.ResponseWriter, err error, fallback string, fields ...zap.Field) {
	if apperror.KindOf(err) == apperror.Unclassified {
		h.logger.Error(fallback, append(fields, zap.Error(err))...)
	} else {
		h.logger.Debug(fallback, append(fields, zap.Error(err))...)
	}
	middleware.RespondWithAppError(w, err, fallback)
}

// CreateItem handles item creation
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to create item"

	raw, err := middleware.ParseBody(r)
	if err != nil {
		h.fail(w, err, fallback)
		return
	}

	var req CreateItemRequest
	if err := middleware.DecodeAndValidate(raw, &req); err != nil {
		h.fail(w, err, fallback)
		return
	}

	item, err := h.itemService.Create(r.Context(), req.input())
	if err != nil {
		h.fail(w, err, fallback)
		return
	}

	h.logger.Info("Item created", zap.String("item_id", item.ID))
	middleware.RespondWithData(w, http.StatusCreated, item)
}

// GetItem handles fetching a single item
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to get item"

	id, err := middleware.ValidateID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, fallback)
		return
	}

	item, err := h.itemService.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err, fallback, zap.String("item_id", id))
		return
	}

	middleware.RespondWithData(w, http.StatusOK, item)
}

// ListItems handles paginated listing
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to list items"

	query := r.URL.Query()

	limit, err := parseLimit(query.Get("limit"))
	if err != nil {
		h.fail(w, err, fallback)
		return
	}

	cursor, err := DecodePageToken(query.Get("page"))
	if err != nil {
		h.fail(w, err, fallback)
		return
	}

	result, err := h.itemService.List(r.Context(), limit, cursor)
	if err != nil {
		h.fail(w, err, fallback)
		return
	}

	response := ListItemsResponse{
		Items:   result.Items,
		Count:   result.Count,
		HasMore: result.Next != nil,
	}
	if response.Items == nil {
		response.Items = []*domain.Item{}
	}
	if result.Next != nil {
		token, err := EncodePageToken(result.Next)
		if err != nil {
			h.fail(w, err, fallback)
			return
		}
		response.NextPage = &token
	}

	h.logger.Debug("Items listed", zap.Int("count", result.Count), zap.Bool("has_more", response.HasMore))
	middleware.RespondWithData(w, http.StatusOK, response)
}

// UpdateItem handles both full and partial updates
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to update item"

	id, err := middleware.ValidateID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, fallback)
		return
	}

	var req UpdateItemRequest
	bodyErr := h.decodeUpdate(r, &req)
	if bodyErr != nil {
		// a missing item takes precedence over a bad body
		if err := h.itemService.EnsureExists(r.Context(), id); err != nil {
			h.fail(w, err, fallback, zap.String("item_id", id))
			return
		}
		h.fail(w, bodyErr, fallback, zap.String("item_id", id))
		return
	}

	item, err := h.itemService.Update(r.Context(), id, req.patch())
	if err != nil {
		h.fail(w, err, fallback, zap.String("item_id", id))
		return
	}

	h.logger.Info("Item updated", zap.String("item_id", id))
	middleware.RespondWithData(w, http.StatusOK, item)
}

func (h *ItemHandler) decodeUpdate(r *http.Request, req *UpdateItemRequest) error {
	raw, err := middleware.ParseBody(r)
	if err != nil {
		return err
	}
	return middleware.DecodeAndValidate(raw, req)
}

// DeleteItem handles item removal
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	const fallback = "Failed to delete item"

	id, err := middleware.ValidateID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, fallback)
		return
	}

	if err := h.itemService.Delete(r.Context(), id); err != nil {
		h.fail(w, err, fallback, zap.String("item_id", id))
		return
	}

	h.logger.Info("Item deleted", zap.String("item_id", id))
	middleware.RespondNoContent(w)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return DefaultListLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > MaxListLimit {
		return 0, apperror.New(apperror.InvalidLimit, "Limit must be between 1 and 100")
	}
	return limit, nil
}
