package sync

import (
	"encoding/json"
	"errors"
	"net/http"
	gosync "sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tressly/tressly/internal/event_bus"
	"github.com/tressly/tressly/internal/rest"
	"github.com/tressly/tressly/pkg/google"
)

type ImportedEventDTO struct {
	RemoteEventId string    `json:"remoteEventId"`
	Summary       string    `json:"summary"`
	Description   string    `json:"description,omitempty"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	ImportedAt    time.Time `json:"importedAt"`
}

type SyncStatusDTO struct {
	Connected  bool       `json:"connected"`
	LastResult *Result    `json:"lastResult,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

type Handler struct {
	engine   *Engine
	tokens   *google.TokenManager
	mappings MappingStore

	mu         gosync.Mutex
	lastResult *Result
	finishedAt *time.Time
}

// NewHandler builds the sync API handler. It listens for completed cycles on
// the bus so the status endpoint reflects scheduled runs too, not only the
// ones triggered through the API.
func NewHandler(engine *Engine, tokens *google.TokenManager, mappings MappingStore, bus *event_bus.EventBus) *Handler {
	h := &Handler{engine: engine, tokens: tokens, mappings: mappings}
	bus.Subscribe(event_bus.SyncCompleted, func(event event_bus.Event) error {
		result, ok := event.Data.(Result)
		if !ok {
			return nil
		}
		h.mu.Lock()
		h.lastResult = &result
		h.finishedAt = &event.Timestamp
		h.mu.Unlock()
		return nil
	})
	return h
}

func (h *Handler) RunSync(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	result, err := h.engine.RunFullSync(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, ErrSyncInProgress):
			writeError(w, http.StatusConflict, "Sync already in progress")
		case errors.Is(err, google.ErrUnauthenticated),
			errors.Is(err, google.ErrAuthExpired),
			errors.Is(err, google.ErrAuthRefresh):
			writeError(w, http.StatusForbidden, "Google Calendar is not connected")
		case errors.Is(err, google.ErrRemoteUnavailable):
			writeError(w, http.StatusServiceUnavailable, "Google Calendar is unavailable")
		default:
			log.Errorf("sync cycle failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Sync failed")
		}
		return
	}

	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	connected, err := h.tokens.Connected(r.Context())
	if err != nil {
		log.Errorf("failed to check Google connection: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to read sync status")
		return
	}

	h.mu.Lock()
	status := SyncStatusDTO{
		Connected:  connected,
		LastResult: h.lastResult,
		FinishedAt: h.finishedAt,
	}
	h.mu.Unlock()

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) ImportedEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'from' date")
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'to' date")
		return
	}

	events, err := h.mappings.ListImportedEvents(r.Context(), from, to)
	if err != nil {
		log.Errorf("failed to list imported events: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list imported events")
		return
	}

	dtos := make([]ImportedEventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, ImportedEventDTO{
			RemoteEventId: event.RemoteEventId,
			Summary:       event.Summary,
			Description:   event.Description,
			StartTime:     event.StartTime,
			EndTime:       event.EndTime,
			ImportedAt:    event.ImportedAt,
		})
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
