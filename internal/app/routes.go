package app

import (
	"github.com/gorilla/mux"
	"github.com/tressly/tressly/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Staff
	r.HandleFunc("/api/staff", deps.StaffHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/staff", deps.StaffHandler.Create).Methods("POST")
	r.HandleFunc("/api/staff/{id}", deps.StaffHandler.Update).Methods("PUT")
	r.HandleFunc("/api/staff/{id}", deps.StaffHandler.Deactivate).Methods("DELETE")

	// Offerings
	r.HandleFunc("/api/offering", deps.OfferingHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/offering", deps.OfferingHandler.Create).Methods("POST")
	r.HandleFunc("/api/offering/{id}", deps.OfferingHandler.Update).Methods("PUT")
	r.HandleFunc("/api/offering/{id}", deps.OfferingHandler.Deactivate).Methods("DELETE")

	// Appointments
	r.HandleFunc("/api/appointment", deps.AppointmentHandler.GetBetween).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/appointment", deps.AppointmentHandler.Create).Methods("POST")
	r.HandleFunc("/api/appointment/{id}", deps.AppointmentHandler.Update).Methods("PUT")
	r.HandleFunc("/api/appointment/{id}", deps.AppointmentHandler.Delete).Methods("DELETE")

	// Calendar sync
	r.HandleFunc("/api/sync/run", deps.SyncHandler.RunSync).Methods("POST")
	r.HandleFunc("/api/sync/status", deps.SyncHandler.Status).Methods("GET")
	r.HandleFunc("/api/calendar/imported", deps.SyncHandler.ImportedEvents).Queries("from", "{from}", "to", "{to}").Methods("GET")

	// Google integration
	r.HandleFunc("/api/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/logout", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth", deps.GoogleAuth.IsAuthenticated).Methods("GET")
}
