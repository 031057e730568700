package appointment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type AppointmentDTO struct {
	Id            int       `json:"id"`
	Uid           string    `json:"uid,omitempty"`
	ClientName    string    `json:"clientName"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	Status        string    `json:"status"`
	StaffIds      []int     `json:"staffIds,omitempty"`
	StaffNames    []string  `json:"staffNames,omitempty"`
	OfferingIds   []int     `json:"offeringIds,omitempty"`
	OfferingNames []string  `json:"offeringNames,omitempty"`
	Synced        bool      `json:"synced"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service}
}

func (h *Handler) GetBetween(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	from, err := time.Parse(time.RFC3339, vars["from"])
	if err != nil {
		http.Error(w, "invalid 'from' date", http.StatusBadRequest)
		return
	}
	to, err := time.Parse(time.RFC3339, vars["to"])
	if err != nil {
		http.Error(w, "invalid 'to' date", http.StatusBadRequest)
		return
	}

	appointments, err := h.service.GetBetween(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]AppointmentDTO, 0, len(appointments))
	for _, appt := range appointments {
		dtos = append(dtos, toDTO(appt))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new appointment")
	w.Header().Set("Content-Type", "application/json")

	var dto AppointmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	appt, err := fromDTO(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), appt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toDTO(*created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var dto AppointmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dto.Id = id
	appt, err := fromDTO(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), appt)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			http.Error(w, "Appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(toDTO(*updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			http.Error(w, "Appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toDTO(appt Appointment) AppointmentDTO {
	return AppointmentDTO{
		Id:            appt.Id,
		Uid:           appt.Uid,
		ClientName:    appt.ClientName,
		StartTime:     appt.StartTime,
		EndTime:       appt.EndTime,
		Status:        string(appt.Status),
		StaffIds:      appt.StaffIds,
		StaffNames:    appt.StaffNames,
		OfferingIds:   appt.OfferingIds,
		OfferingNames: appt.OfferingNames,
		Synced:        appt.Mirrored() && !appt.CalendarDirty,
	}
}

func fromDTO(dto AppointmentDTO) (Appointment, error) {
	status := StatusScheduled
	if dto.Status != "" {
		parsed, err := ParseStatus(dto.Status)
		if err != nil {
			return Appointment{}, err
		}
		status = parsed
	}
	return Appointment{
		Id:          dto.Id,
		ClientName:  dto.ClientName,
		StartTime:   dto.StartTime,
		EndTime:     dto.EndTime,
		Status:      status,
		StaffIds:    dto.StaffIds,
		OfferingIds: dto.OfferingIds,
	}, nil
}
