package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/venuedesk/venuedesk/internal/platform/httpx"
)

// Handler serves the audit log API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers audit routes. Callers gate them with the RBAC
// middleware before mounting.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
}

type logEntryResponse struct {
	ID           int64          `json:"id"`
	VenueID      uuid.UUID      `json:"venue_id"`
	Action       string         `json:"action"`
	ActorID      uuid.UUID      `json:"actor_id"`
	TargetUserID *uuid.UUID     `json:"target_user_id,omitempty"`
	RoleID       *int64         `json:"role_id,omitempty"`
	PermissionID *int64         `json:"permission_id,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    string         `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "venueID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Venue", "venue id must be a UUID")
		return
	}
	query := r.URL.Query()

	if query.Has("page") {
		page, _ := strconv.Atoi(query.Get("page"))
		perPage, _ := strconv.Atoi(query.Get("per_page"))
		entries, pagination, err := h.service.GetAuditLogPage(r.Context(), venueID, page, perPage)
		if err != nil {
			h.logger.Error("list audit log failed", slog.Any("error", err), slog.String("venue_id", venueID.String()))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{
			"entries":    toResponses(entries),
			"pagination": pagination,
		})
		return
	}

	limit, _ := strconv.Atoi(query.Get("limit"))
	entries, err := h.service.GetAuditLog(r.Context(), venueID, limit)
	if err != nil {
		h.logger.Error("list audit log failed", slog.Any("error", err), slog.String("venue_id", venueID.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": toResponses(entries)})
}

func toResponses(entries []LogEntry) []logEntryResponse {
	out := make([]logEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, logEntryResponse{
			ID:           entry.ID,
			VenueID:      entry.VenueID,
			Action:       entry.Action,
			ActorID:      entry.ActorID,
			TargetUserID: entry.TargetUserID,
			RoleID:       entry.RoleID,
			PermissionID: entry.PermissionID,
			Details:      entry.Details,
			CreatedAt:    entry.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out
}
