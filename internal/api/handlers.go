package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/plantshop/internal/api/middleware"
	"github.com/example/plantshop/internal/catalog"
	"github.com/example/plantshop/internal/comments"
	"github.com/example/plantshop/internal/domain/cart"
	"github.com/example/plantshop/internal/domain/order"
	"github.com/example/plantshop/internal/session"
)

// Handlers serves the storefront endpoints.
type Handlers struct {
	sessions *session.Manager
	catalog  catalog.Store
	comments *comments.Service
	logger   zerolog.Logger
}

func NewHandlers(sessions *session.Manager, cat catalog.Store, com *comments.Service, logger zerolog.Logger) *Handlers {
	return &Handlers{
		sessions: sessions,
		catalog:  cat,
		comments: com,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// Product handlers

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	var (
		products []catalog.Product
		err      error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		products, err = h.catalog.ListByCategory(r.Context(), category)
	} else {
		products, err = h.catalog.List(r.Context())
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list products")
		respondError(w, "failed to list products", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	p, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		respondError(w, "product not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Price       int    `json:"price"`
		Stock       int    `json:"stock"`
		Image       string `json:"image"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Price <= 0 {
		respondError(w, "name and a positive price are required", http.StatusBadRequest)
		return
	}

	now := time.Now()
	p := &catalog.Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Price:       req.Price,
		Stock:       req.Stock,
		Image:       req.Image,
		Category:    req.Category,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.catalog.Create(r.Context(), p); err != nil {
		h.logger.Error().Err(err).Msg("failed to create product")
		respondError(w, "failed to create product", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	existing, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		respondError(w, "product not found", http.StatusNotFound)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Price       int    `json:"price"`
		Stock       int    `json:"stock"`
		Image       string `json:"image"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	existing.Name = req.Name
	existing.Price = req.Price
	existing.Stock = req.Stock
	existing.Image = req.Image
	existing.Category = req.Category
	existing.Description = req.Description
	existing.UpdatedAt = time.Now()

	if err := h.catalog.Update(r.Context(), existing); err != nil {
		h.logger.Error().Err(err).Msg("failed to update product")
		respondError(w, "failed to update product", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, existing)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, "product not found", http.StatusNotFound)
			return
		}
		respondError(w, "failed to delete product", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// Cart handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	respondJSON(w, http.StatusOK, map[string]any{
		"items": s.CartItems(),
		"total": s.CartTotal(),
	})
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		respondError(w, "product not found", http.StatusNotFound)
		return
	}

	s := h.session(r)
	notice, err := s.AddToCart(r.Context(), *p)
	switch {
	case errors.Is(err, cart.ErrInvalidPrice):
		respondError(w, "product has no valid price", http.StatusBadRequest)
		return
	case errors.Is(err, cart.ErrQuantityLimit):
		// Limit hits are a notice, not a failure; state is unchanged.
		respondJSON(w, http.StatusOK, map[string]string{"message": "quantity limit reached"})
		return
	case err != nil:
		respondError(w, "failed to add to cart", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": notice})
}

func (h *Handlers) IncreaseQuantity(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/cart/items/"), "/increase")
	h.session(r).IncreaseQuantity(id)
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) DecreaseQuantity(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/cart/items/"), "/decrease")
	h.session(r).DecreaseQuantity(id)
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/cart/items/")
	h.session(r).RemoveFromCart(id)
	w.WriteHeader(http.StatusOK)
}

// Checkout and order handlers

type orderResponse struct {
	order.Order
	Status order.Status `json:"status"`
}

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	var info order.DeliveryInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s := h.session(r)
	o, err := s.Checkout(r.Context(), info)
	switch {
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidDeliveryInfo),
		errors.Is(err, order.ErrInvalidPaymentMethod):
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		// The order is applied in memory even when persistence failed.
		h.logger.Error().Err(err).Msg("checkout persistence failure")
		respondError(w, "order placed but could not be saved, please retry later", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, orderResponse{Order: *o, Status: s.OrderStatus(o)})
}

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	history := s.Orders()
	out := make([]orderResponse, len(history))
	for i := range history {
		out[i] = orderResponse{Order: history[i], Status: s.OrderStatus(&history[i])}
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")
	s := h.session(r)
	o, ok := s.Order(id)
	if !ok {
		respondError(w, "order not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, orderResponse{Order: *o, Status: s.OrderStatus(o)})
}

func (h *Handlers) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")
	if err := h.session(r).DeleteOrder(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Msg("failed to persist order history")
		respondError(w, "failed to delete order", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
}

func (h *Handlers) ClearOrders(w http.ResponseWriter, r *http.Request) {
	if err := h.session(r).ClearOrderHistory(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("failed to persist order history")
		respondError(w, "failed to clear order history", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "order history cleared"})
}

// Comment handlers

func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSuffix(extractPathParam(r.URL.Path, "/products/"), "/comments")
	list, err := h.comments.ListByProduct(r.Context(), productID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list comments")
		respondError(w, "failed to list comments", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSuffix(extractPathParam(r.URL.Path, "/products/"), "/comments")
	if _, err := h.catalog.Get(r.Context(), productID); err != nil {
		respondError(w, "product not found", http.StatusNotFound)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	c, err := h.comments.Add(r.Context(), productID, claims.UserID, displayName(claims.Email), req.Content)
	switch {
	case errors.Is(err, comments.ErrEmptyContent):
		respondError(w, "comment content cannot be empty", http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("failed to add comment")
		respondError(w, "failed to add comment", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/comments/")

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.comments.Update(r.Context(), id, middleware.GetUserID(r.Context()), req.Content)
	switch {
	case errors.Is(err, comments.ErrEmptyContent):
		respondError(w, "comment content cannot be empty", http.StatusBadRequest)
		return
	case errors.Is(err, comments.ErrCommentNotFound):
		respondError(w, "comment not found", http.StatusNotFound)
		return
	case errors.Is(err, comments.ErrNotAuthor):
		respondError(w, "you can only edit your own comments", http.StatusForbidden)
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("failed to update comment")
		respondError(w, "failed to update comment", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/comments/")

	err := h.comments.Delete(r.Context(), id, middleware.GetUserID(r.Context()))
	switch {
	case errors.Is(err, comments.ErrCommentNotFound):
		respondError(w, "comment not found", http.StatusNotFound)
		return
	case errors.Is(err, comments.ErrNotAuthor):
		respondError(w, "you can only delete your own comments", http.StatusForbidden)
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("failed to delete comment")
		respondError(w, "failed to delete comment", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}

// displayName derives the commenter's display name from the email local
// part, matching how the storefront renders accounts without a full profile.
func displayName(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// Favorites handlers

func (h *Handlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	respondJSON(w, http.StatusOK, map[string]any{
		"items":           s.Favorites(),
		"purchase_counts": s.PurchaseCounts(),
	})
}

func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		respondError(w, "product not found", http.StatusNotFound)
		return
	}

	favorited, err := h.session(r).ToggleFavorite(r.Context(), *p)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to persist favorites")
		respondError(w, "failed to update favorites", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"favorited": favorited})
}

func (h *Handlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/favorites/")
	if err := h.session(r).RemoveFavorite(r.Context(), id); err != nil {
		h.logger.Error().Err(err).Msg("failed to persist favorites")
		respondError(w, "failed to update favorites", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Notification handlers

func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	respondJSON(w, http.StatusOK, map[string]any{
		"items":  s.Notifications(),
		"unread": s.UnreadNotifications(),
	})
}

func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/notifications/"), "/read")
	h.session(r).MarkNotificationRead(r.Context(), id)
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	h.session(r).MarkAllNotificationsRead(r.Context())
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	h.session(r).ClearNotifications(r.Context())
	w.WriteHeader(http.StatusOK)
}

// helpers

func (h *Handlers) session(r *http.Request) *session.Session {
	return h.sessions.Get(r.Context(), middleware.GetUserID(r.Context()))
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}
