package app

import (
	"database/sql"

	"github.com/tressly/tressly/internal/config"
	"github.com/tressly/tressly/internal/event_bus"
	"github.com/tressly/tressly/internal/utils"
	"github.com/tressly/tressly/pkg/appointment"
	"github.com/tressly/tressly/pkg/google"
	"github.com/tressly/tressly/pkg/offering"
	"github.com/tressly/tressly/pkg/staff"
	"github.com/tressly/tressly/pkg/sync"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Bus   *event_bus.EventBus
	Clock utils.Clock

	StaffRepo    staff.StaffRepo
	StaffService staff.Service
	StaffHandler *staff.Handler

	OfferingRepo    offering.OfferingRepo
	OfferingService offering.Service
	OfferingHandler *offering.Handler

	AppointmentRepo    appointment.Repository
	AppointmentService *appointment.Service
	AppointmentHandler *appointment.Handler

	TokenStore     google.TokenStore
	TokenManager   *google.TokenManager
	GoogleAuth     *google.GoogleAuth
	CalendarClient google.CalendarClient

	MappingStore  sync.MappingStore
	SyncEngine    *sync.Engine
	SyncHandler   *sync.Handler
	SyncScheduler *sync.Scheduler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Bus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.StaffRepo = staff.NewStaffRepo(db)
	deps.StaffService = staff.NewService(deps.StaffRepo)
	deps.StaffHandler = staff.NewHandler(deps.StaffService)

	deps.OfferingRepo = offering.NewOfferingRepo(db)
	deps.OfferingService = offering.NewService(deps.OfferingRepo)
	deps.OfferingHandler = offering.NewHandler(deps.OfferingService)

	deps.AppointmentRepo = appointment.NewRepository(db)
	deps.AppointmentService = appointment.NewService(deps.AppointmentRepo, deps.Bus)
	deps.AppointmentHandler = appointment.NewHandler(deps.AppointmentService)

	deps.TokenStore = google.NewSQLTokenStore(db)
	deps.TokenManager = google.NewTokenManager(deps.TokenStore, cfg, deps.Clock)
	deps.GoogleAuth = google.NewGoogleAuth(deps.TokenStore, deps.TokenManager, deps.Bus)
	deps.CalendarClient = google.NewCalendarClient(deps.TokenManager, cfg.Google.CalendarId, cfg.Google.Timezone)

	deps.MappingStore = sync.NewSQLMappingStore(db)
	deps.SyncEngine = sync.NewEngine(deps.AppointmentRepo, deps.MappingStore, deps.CalendarClient,
		deps.Bus, deps.Clock, cfg.Sync.WindowDays)
	deps.SyncHandler = sync.NewHandler(deps.SyncEngine, deps.TokenManager, deps.MappingStore, deps.Bus)
	// The scheduler registers its bus subscriptions on construction; its
	// ticker loop is started by Application.Run.
	deps.SyncScheduler = sync.NewScheduler(deps.SyncEngine, deps.Bus, cfg.Sync.IntervalMinutes)

	return deps
}
