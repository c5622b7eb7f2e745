package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	agendahandler "github.com/quadrant/quadrant-backend/internal/agenda/handler"
	agendarepo "github.com/quadrant/quadrant-backend/internal/agenda/repository"
	agendasvc "github.com/quadrant/quadrant-backend/internal/agenda/service"
	assessmenthandler "github.com/quadrant/quadrant-backend/internal/assessments/handler"
	assessmentrepo "github.com/quadrant/quadrant-backend/internal/assessments/repository"
	assessmentsvc "github.com/quadrant/quadrant-backend/internal/assessments/service"
	decisionhandler "github.com/quadrant/quadrant-backend/internal/decisions/handler"
	decisionrepo "github.com/quadrant/quadrant-backend/internal/decisions/repository"
	decisionsvc "github.com/quadrant/quadrant-backend/internal/decisions/service"
	notificationconsumers "github.com/quadrant/quadrant-backend/internal/notifications/consumers"
	notificationhandler "github.com/quadrant/quadrant-backend/internal/notifications/handler"
	notificationrepo "github.com/quadrant/quadrant-backend/internal/notifications/repository"
	notificationsvc "github.com/quadrant/quadrant-backend/internal/notifications/service"
	pilothandler "github.com/quadrant/quadrant-backend/internal/pilots/handler"
	pilotrepo "github.com/quadrant/quadrant-backend/internal/pilots/repository"
	pilotsvc "github.com/quadrant/quadrant-backend/internal/pilots/service"
	planninghandler "github.com/quadrant/quadrant-backend/internal/planning/handler"
	planningrepo "github.com/quadrant/quadrant-backend/internal/planning/repository"
	planningsvc "github.com/quadrant/quadrant-backend/internal/planning/service"
	riskevents "github.com/quadrant/quadrant-backend/internal/risk/events"
	riskhandler "github.com/quadrant/quadrant-backend/internal/risk/handler"
	riskrepo "github.com/quadrant/quadrant-backend/internal/risk/repository"
	risksvc "github.com/quadrant/quadrant-backend/internal/risk/service"
	skillshandler "github.com/quadrant/quadrant-backend/internal/skills/handler"
	skillsrepo "github.com/quadrant/quadrant-backend/internal/skills/repository"
	skillssvc "github.com/quadrant/quadrant-backend/internal/skills/service"
	workspacehandler "github.com/quadrant/quadrant-backend/internal/workspaces/handler"
	workspacerepo "github.com/quadrant/quadrant-backend/internal/workspaces/repository"
	workspacesvc "github.com/quadrant/quadrant-backend/internal/workspaces/service"
	"github.com/quadrant/quadrant-backend/pkg/auth"
	"github.com/quadrant/quadrant-backend/pkg/config"
	"github.com/quadrant/quadrant-backend/pkg/database"
	"github.com/quadrant/quadrant-backend/pkg/httputil"
	"github.com/quadrant/quadrant-backend/pkg/logger"
	"github.com/quadrant/quadrant-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("quadrant-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("quadrant-service", cfg.Server.Environment)
	log.Info().Msg("starting Quadrant Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeQuadrantEvents, "quadrant-service", log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	verifier := auth.NewVerifier(&cfg.JWT)

	// Initialize repositories
	snapshotRepo := skillsrepo.NewSnapshotRepository(db)
	employeeRepo := skillsrepo.NewEmployeeRepository(db)
	skillRepo := skillsrepo.NewSkillRepository(db)
	trackRepo := skillsrepo.NewTrackRepository(db)
	roleRepo := skillsrepo.NewRoleRepository(db)
	ratingRepo := skillsrepo.NewRatingRepository(db)
	riskCaseRepo := riskrepo.NewRiskCaseRepository(db)
	memberRepo := workspacerepo.NewMemberRepository(db)
	notificationRepo := notificationrepo.NewNotificationRepository(db)
	scenarioRepo := planningrepo.NewScenarioRepository(db)
	pilotRepo := pilotrepo.NewPilotRepository(db)
	questRepo := pilotrepo.NewQuestRepository(db)
	cycleRepo := assessmentrepo.NewCycleRepository(db)
	decisionRepo := decisionrepo.NewDecisionRepository(db)
	sourceRepo := agendarepo.NewSourceRepository(db)

	// Initialize services
	skillMapService := skillssvc.NewSkillMapService(snapshotRepo, log)
	skillGapService := skillssvc.NewSkillGapService(roleRepo, ratingRepo, skillRepo, employeeRepo, log)
	catalogService := skillssvc.NewCatalogService(employeeRepo, skillRepo, trackRepo, roleRepo, ratingRepo, log)
	memberService := workspacesvc.NewMemberService(memberRepo, log)
	riskPublisher := riskevents.NewRiskEventPublisher(publisher, log)
	riskCaseService := risksvc.NewRiskCaseService(riskCaseRepo, riskPublisher, memberService, log)
	notificationService := notificationsvc.NewNotificationService(notificationRepo, log)
	riskPlannerService := planningsvc.NewRiskPlannerService(snapshotRepo, trackRepo, roleRepo, ratingRepo, cfg.Planning, log)
	scenarioService := planningsvc.NewScenarioService(scenarioRepo, riskPlannerService, log)
	pilotService := pilotsvc.NewPilotService(pilotRepo, questRepo, publisher, log)
	cycleService := assessmentsvc.NewCycleService(cycleRepo, snapshotRepo, ratingRepo, publisher, log)
	decisionService := decisionsvc.NewDecisionService(decisionRepo, employeeRepo, log)
	agendaService := agendasvc.NewAgendaService(sourceRepo, trackRepo, employeeRepo, pilotRepo, skillGapService, cfg.Agenda, log)

	// Initialize handlers
	catalogHandler := skillshandler.NewCatalogHandler(catalogService, log)
	roleHandler := skillshandler.NewRoleHandler(catalogService, log)
	analyticsHandler := skillshandler.NewAnalyticsHandler(skillMapService, skillGapService, log)
	riskCaseHandler := riskhandler.NewRiskCaseHandler(riskCaseService, log)
	memberHandler := workspacehandler.NewMemberHandler(memberService, log)
	notificationHandler := notificationhandler.NewNotificationHandler(notificationService, log)
	planningHandler := planninghandler.NewPlanningHandler(riskPlannerService, scenarioService, log)
	pilotHandler := pilothandler.NewPilotHandler(pilotService, log)
	cycleHandler := assessmenthandler.NewCycleHandler(cycleService, log)
	decisionHandler := decisionhandler.NewDecisionHandler(decisionService, log)
	agendaHandler := agendahandler.NewAgendaHandler(agendaService, log)

	// Start notification consumer
	notificationConsumer, err := notificationconsumers.NewNotificationConsumer(rmq, notificationService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create notification consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := notificationConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start notification consumer")
	}

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Workspace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "quadrant-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes, all workspace scoped
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httputil.WorkspaceMiddleware(verifier))

		// Skill catalog
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", catalogHandler.ListEmployees)
			r.Post("/", catalogHandler.CreateEmployee)
			r.Get("/{id}", catalogHandler.GetEmployee)
			r.Put("/{id}", catalogHandler.UpdateEmployee)
			r.Delete("/{id}", catalogHandler.DeleteEmployee)
			r.Put("/{id}/skills", catalogHandler.SetEmployeeSkill)
			r.Delete("/{id}/skills/{skillID}", catalogHandler.RemoveEmployeeSkill)
			r.Get("/{id}/gaps", analyticsHandler.EmployeeGaps)
		})
		r.Route("/skills", func(r chi.Router) {
			r.Get("/", catalogHandler.ListSkills)
			r.Post("/", catalogHandler.CreateSkill)
			r.Put("/{id}", catalogHandler.UpdateSkill)
			r.Delete("/{id}", catalogHandler.DeleteSkill)
		})
		r.Route("/tracks", func(r chi.Router) {
			r.Get("/", catalogHandler.ListTracks)
			r.Post("/", catalogHandler.CreateTrack)
			r.Put("/{id}", catalogHandler.UpdateTrack)
			r.Delete("/{id}", catalogHandler.DeleteTrack)
		})

		// Role profiles and ratings
		r.Route("/roles", func(r chi.Router) {
			r.Get("/", roleHandler.ListRoles)
			r.Post("/", roleHandler.CreateRole)
			r.Get("/{id}", roleHandler.GetRole)
			r.Put("/{id}/requirements", roleHandler.SetRequirement)
			r.Post("/{id}/assignments", roleHandler.AssignEmployee)
			r.Delete("/{id}/assignments/{employeeID}", roleHandler.UnassignEmployee)
			r.Get("/{id}/gaps", analyticsHandler.RoleGaps)
		})
		r.Post("/ratings", roleHandler.RecordRating)

		// Analytics
		r.Get("/skill-map", analyticsHandler.SkillMap)

		// Risk cases
		r.Route("/risk-cases", func(r chi.Router) {
			r.Get("/", riskCaseHandler.List)
			r.Post("/ensure", riskCaseHandler.Ensure)
			r.Get("/{id}", riskCaseHandler.Get)
			r.Put("/{id}/status", riskCaseHandler.UpdateStatus)
		})

		// Planning
		r.Route("/planning", func(r chi.Router) {
			r.Get("/teams/summary", planningHandler.AllTeamsSummary)
			r.Get("/teams/{trackID}/summary", planningHandler.TeamSummary)
			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", planningHandler.List)
				r.Post("/", planningHandler.Create)
				r.Post("/suggest", planningHandler.Suggest)
				r.Get("/{id}", planningHandler.Get)
				r.Put("/{id}/status", planningHandler.UpdateStatus)
				r.Post("/{id}/actions", planningHandler.AddAction)
				r.Delete("/{id}/actions/{actionID}", planningHandler.RemoveAction)
				r.Delete("/{id}", planningHandler.Delete)
			})
		})

		// Manager agenda
		r.Get("/agenda", agendaHandler.Get)

		// Pilots and quests
		r.Route("/pilots", func(r chi.Router) {
			r.Get("/", pilotHandler.List)
			r.Post("/", pilotHandler.Create)
			r.Get("/{id}", pilotHandler.Get)
			r.Put("/{id}", pilotHandler.Update)
			r.Put("/{id}/status", pilotHandler.SetStatus)
			r.Delete("/{id}", pilotHandler.Delete)
			r.Post("/{id}/steps", pilotHandler.AddStep)
			r.Put("/{id}/steps/{stepID}/status", pilotHandler.SetStepStatus)
			r.Post("/{id}/participants", pilotHandler.AddParticipant)
			r.Delete("/{id}/participants/{employeeID}", pilotHandler.RemoveParticipant)
			r.Post("/{id}/notes", pilotHandler.AddNote)
		})
		r.Route("/quests", func(r chi.Router) {
			r.Get("/", pilotHandler.ListQuests)
			r.Post("/", pilotHandler.CreateQuest)
			r.Put("/{id}/status", pilotHandler.SetQuestStatus)
			r.Delete("/{id}", pilotHandler.DeleteQuest)
		})

		// Assessment cycles
		r.Route("/assessment-cycles", func(r chi.Router) {
			r.Get("/", cycleHandler.List)
			r.Post("/", cycleHandler.Create)
			r.Get("/{id}", cycleHandler.Get)
			r.Post("/{id}/activate", cycleHandler.Activate)
			r.Post("/{id}/close", cycleHandler.Close)
			r.Get("/{id}/participants/{employeeID}/sheet", cycleHandler.Sheet)
			r.Post("/{id}/participants/{employeeID}/submit", cycleHandler.Submit)
			r.Post("/{id}/participants/{employeeID}/finalize", cycleHandler.Finalize)
		})

		// Talent decisions
		r.Route("/decisions", func(r chi.Router) {
			r.Get("/", decisionHandler.List)
			r.Post("/", decisionHandler.Create)
			r.Get("/export.csv", decisionHandler.ExportCSV)
			r.Get("/{id}", decisionHandler.Get)
			r.Put("/{id}", decisionHandler.Update)
			r.Delete("/{id}", decisionHandler.Delete)
		})

		// Notifications
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.List)
			r.Put("/read-all", notificationHandler.MarkAllRead)
			r.Put("/{id}/read", notificationHandler.MarkRead)
		})

		// Workspace members
		r.Route("/members", func(r chi.Router) {
			r.Get("/", memberHandler.List)
			r.Post("/", memberHandler.Add)
			r.Put("/{userID}/role", memberHandler.UpdateRole)
			r.Delete("/{userID}", memberHandler.Remove)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop consumers
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
