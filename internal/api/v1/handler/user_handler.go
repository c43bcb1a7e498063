package handler

import (
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/rs/zerolog"
)

// UserHandler serves the caller's enrollment views
type UserHandler struct {
	queries service.BookingQueryService
	logger  zerolog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(queries service.BookingQueryService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{queries: queries, logger: logger}
}

// RegisterRoutes mounts v1 user routes
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/users/courses", authMw(http.HandlerFunc(h.getUserBookings)))
	mux.Handle("/users/credits", authMw(http.HandlerFunc(h.getRemainingCredit)))
}

// getUserBookings godoc
// @Summary The caller's bookings
// @Description Returns the authenticated user's bookings, cancelled ones included, with course and coach names.
// @Tags users
// @Produce json
// @Success 200 {array} dto.UserBookingDTO
// @Failure 500 {string} string "Failed to fetch bookings"
// @Router /users/courses [get]
func (h *UserHandler) getUserBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	views, err := h.queries.GetUserBookings(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to fetch user bookings")
		http.Error(w, "Failed to fetch bookings", http.StatusInternalServerError)
		return
	}
	resp := make([]dto.UserBookingDTO, 0, len(views))
	for _, v := range views {
		resp = append(resp, dto.UserBookingDTO{
			BookingID:   v.BookingID,
			CourseName:  v.CourseName,
			CoachName:   v.CoachName,
			Status:      string(v.Status),
			StartAt:     v.StartAt,
			EndAt:       v.EndAt,
			MeetingURL:  v.MeetingURL,
			BookedAt:    v.BookedAt,
			CancelledAt: v.CancelledAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// getRemainingCredit godoc
// @Summary The caller's credit balance
// @Description Returns purchased-minus-used credits for the authenticated user.
// @Tags users
// @Produce json
// @Success 200 {object} dto.CreditBalanceDTO
// @Failure 500 {string} string "Failed to fetch credit balance"
// @Router /users/credits [get]
func (h *UserHandler) getRemainingCredit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	balance, err := h.queries.GetRemainingCredit(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to fetch credit balance")
		http.Error(w, "Failed to fetch credit balance", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dto.CreditBalanceDTO{Remaining: balance.Remaining, Used: balance.Used})
}
