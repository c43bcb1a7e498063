package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// CourseHandler handles the course catalog and enrollment endpoints
type CourseHandler struct {
	enrollment service.EnrollmentService
	queries    service.BookingQueryService
	validate   *validator.Validate
	logger     zerolog.Logger
}

// NewCourseHandler creates a new CourseHandler
func NewCourseHandler(enrollment service.EnrollmentService, queries service.BookingQueryService, v *validator.Validate, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{enrollment: enrollment, queries: queries, validate: v, logger: logger}
}

// RegisterRoutes mounts course routes. The catalog listing is public; booking
// and cancelling require auth.
func (h *CourseHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/courses", http.HandlerFunc(h.listCourses))
	mux.Handle("/courses/", authMw(http.HandlerFunc(h.handleCourse)))
}

func (h *CourseHandler) handleCourse(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/courses/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] != "" && r.Method == http.MethodPost:
		h.bookCourse(w, r, parts[0])
	case len(parts) == 1 && parts[0] != "" && r.Method == http.MethodDelete:
		h.cancelBooking(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "roster" && r.Method == http.MethodGet:
		h.getRoster(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

// listCourses godoc
// @Summary List courses
// @Description Returns every published course with coach and skill names and current occupancy.
// @Tags courses
// @Produce json
// @Success 200 {array} dto.CourseListingDTO
// @Failure 500 {string} string "Failed to list courses"
// @Router /courses [get]
func (h *CourseHandler) listCourses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	listings, err := h.queries.ListCourses(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list courses")
		http.Error(w, "Failed to list courses", http.StatusInternalServerError)
		return
	}
	resp := make([]dto.CourseListingDTO, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, dto.CourseListingDTO{
			CourseID:        l.CourseID,
			CoachName:       l.CoachName,
			SkillName:       l.SkillName,
			Name:            l.Name,
			Description:     l.Description,
			StartAt:         l.StartAt,
			EndAt:           l.EndAt,
			MaxParticipants: l.MaxParticipants,
			Occupied:        l.Occupied,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// bookCourse godoc
// @Summary Book a course
// @Description Reserves a seat in the course for the authenticated user, consuming one credit.
// @Tags courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 201 {object} dto.BookingResponseDTO
// @Failure 400 {string} string "Insufficient credit, course full, or already booked"
// @Failure 404 {string} string "Course not found"
// @Failure 409 {string} string "Concurrent write conflict, retry"
// @Router /courses/{courseId} [post]
func (h *CourseHandler) bookCourse(w http.ResponseWriter, r *http.Request, courseID string) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	bookingID, err := h.enrollment.Book(r.Context(), userID, courseID)
	if err != nil {
		writeEnrollmentError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.BookingResponseDTO{BookingID: bookingID})
}

// cancelBooking godoc
// @Summary Cancel a booking
// @Description Cancels the authenticated user's active booking for the course, freeing the seat and the credit.
// @Tags courses
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param body body dto.CancelBookingDTO false "Optional cancellation reason"
// @Success 200 {string} string "OK"
// @Failure 400 {string} string "Not booked"
// @Failure 404 {string} string "Course not found"
// @Router /courses/{courseId} [delete]
func (h *CourseHandler) cancelBooking(w http.ResponseWriter, r *http.Request, courseID string) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}

	var req dto.CancelBookingDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.enrollment.Cancel(r.Context(), userID, courseID, req.Reason); err != nil {
		writeEnrollmentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// getRoster godoc
// @Summary Course roster
// @Description Returns the occupancy summary and participant names for a course.
// @Tags courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} dto.CourseRosterDTO
// @Failure 404 {string} string "Course not found"
// @Router /courses/{courseId}/roster [get]
func (h *CourseHandler) getRoster(w http.ResponseWriter, r *http.Request, courseID string) {
	roster, err := h.queries.GetCourseRoster(r.Context(), courseID)
	if err != nil {
		writeEnrollmentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CourseRosterDTO{
		CourseID:        roster.CourseID,
		MaxParticipants: roster.MaxParticipants,
		Occupied:        roster.Occupied,
		Participants:    roster.Participants,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
