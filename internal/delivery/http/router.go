package http

import (
	"net/http"

	"dental-clinic-api/internal/delivery/http/handler"
	"dental-clinic-api/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router               *mux.Router
	authHandler          *handler.AuthHandler
	appointmentHandler   *handler.AppointmentHandler
	doctorHandler        *handler.DoctorHandler
	availabilityHandler  *handler.AvailabilityHandler
	dentalHistoryHandler *handler.DentalHistoryHandler
	auditLogHandler      *handler.AuditLogHandler
	authMiddleware       *middleware.AuthMiddleware
	corsMiddleware       *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	appointmentHandler *handler.AppointmentHandler,
	doctorHandler *handler.DoctorHandler,
	availabilityHandler *handler.AvailabilityHandler,
	dentalHistoryHandler *handler.DentalHistoryHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:               mux.NewRouter(),
		authHandler:          authHandler,
		appointmentHandler:   appointmentHandler,
		doctorHandler:        doctorHandler,
		availabilityHandler:  availabilityHandler,
		dentalHistoryHandler: dentalHistoryHandler,
		auditLogHandler:      auditLogHandler,
		authMiddleware:       authMiddleware,
		corsMiddleware:       corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.Me).Methods(http.MethodGet)
	authProtected.HandleFunc("/me", r.authHandler.UpdateProfile).Methods(http.MethodPut)

	// Public doctor directory
	api.HandleFunc("/doctors", r.doctorHandler.ListDoctors).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{doctorId}/availability", r.availabilityHandler.GetAvailability).Methods(http.MethodGet)

	// Appointment routes (protected)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.Handle("", middleware.RequireAdminOrPatient(http.HandlerFunc(r.appointmentHandler.CreateAppointment))).Methods(http.MethodPost)
	appointments.Handle("/me", middleware.RequirePatient(http.HandlerFunc(r.appointmentHandler.GetMyAppointments))).Methods(http.MethodGet)
	appointments.Handle("/doctor/{doctorId}", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.appointmentHandler.GetDoctorAppointments))).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}", r.appointmentHandler.DeleteAppointment).Methods(http.MethodDelete)

	// Availability management (doctor or admin)
	availability := api.PathPrefix("/availability").Subrouter()
	availability.Use(r.authMiddleware.Authenticate)
	availability.Use(middleware.RequireAdminOrDoctor)
	availability.HandleFunc("", r.availabilityHandler.SetAvailability).Methods(http.MethodPost)
	availability.HandleFunc("/{id}", r.availabilityHandler.DeleteAvailability).Methods(http.MethodDelete)

	// Dental history routes (protected; per-patient access enforced in usecase)
	history := api.PathPrefix("/dental-history").Subrouter()
	history.Use(r.authMiddleware.Authenticate)
	history.HandleFunc("/{patientId}", r.dentalHistoryHandler.GetPatientHistory).Methods(http.MethodGet)
	history.Handle("/records", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.dentalHistoryHandler.AddTreatmentRecord))).Methods(http.MethodPost)
	history.Handle("/{patientId}/medical-info", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.dentalHistoryHandler.UpdateMedicalInfo))).Methods(http.MethodPut)
	history.Handle("/{patientId}/teeth-condition", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.dentalHistoryHandler.UpdateTeethCondition))).Methods(http.MethodPut)
	history.Handle("/{patientId}/xray-records", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.dentalHistoryHandler.AddXrayRecord))).Methods(http.MethodPost)
	history.Handle("/{patientId}/treatment-plan", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.dentalHistoryHandler.UpdateTreatmentPlan))).Methods(http.MethodPut)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	// Doctor management (admin)
	admin.HandleFunc("/doctors", r.doctorHandler.CreateDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors/{id}", r.doctorHandler.UpdateDoctor).Methods(http.MethodPut)
	admin.HandleFunc("/doctors/{id}", r.doctorHandler.DeleteDoctor).Methods(http.MethodDelete)

	// Appointment oversight (admin)
	admin.HandleFunc("/appointments", r.appointmentHandler.GetAllAppointments).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/{id}/status", r.appointmentHandler.UpdateStatus).Methods(http.MethodPatch)

	// Audit trail (admin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.ListAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
