package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/stgabriel/parishhub/internal/ai"
	"github.com/stgabriel/parishhub/internal/blob"
	"github.com/stgabriel/parishhub/internal/email"
	"github.com/stgabriel/parishhub/internal/events"
	"github.com/stgabriel/parishhub/internal/handler"
	"github.com/stgabriel/parishhub/internal/jobs"
	"github.com/stgabriel/parishhub/internal/middleware"
	"github.com/stgabriel/parishhub/internal/push"
	"github.com/stgabriel/parishhub/internal/store"
)

// Config carries the server-level settings that are not injected as
// constructed clients.
type Config struct {
	AuthSecret       []byte
	JobToken         string
	BaseURL          string
	SummaryRecipient string
	PushSubscriber   string
	Push             push.Config
}

type Server struct {
	db          *sql.DB
	hub         *events.Hub
	reminderH   *handler.ReminderHandler
	taskH       *handler.TaskHandler
	jobH        *handler.JobHandler
	intakeH     *handler.IntakeHandler
	adminH      *handler.AdminHandler
	commentH    *handler.CommentHandler
	userH       *handler.UserHandler
	pushH       *handler.PushHandler
	userStore   *store.UserStore
	generator   *jobs.Generator
	digest      *jobs.Digest
	rateLimiter *middleware.RateLimiter
	cfg         Config
	logger      *slog.Logger
}

// New wires stores, jobs, and handlers. The reminder and task repositories
// are passed in because the backing store is chosen at startup; everything
// else lives in the relational database.
func New(
	db *sql.DB,
	reminders store.ReminderRepository,
	tasks store.TaskRepository,
	mailer *email.Client,
	aiClient *ai.Client,
	uploader *blob.Uploader,
	cfg Config,
	logger *slog.Logger,
) *Server {
	hub := events.NewHub(logger.With("component", "events"))

	requestStore := store.NewRequestStore(db)
	registry := store.NewRegistry(requestStore)
	commentStore := store.NewCommentStore(db)
	ministryStore := store.NewMinistryStore(db)
	userStore := store.NewUserStore(db)
	pushStore := store.NewPushStore(db)

	var pushSvc *push.Service
	var notifier *push.Notifier
	var pushH *handler.PushHandler
	if cfg.Push.VAPIDPublicKey != "" && cfg.Push.VAPIDPrivateKey != "" {
		pushLogger := logger.With("component", "push")
		pushSvc = push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey, cfg.PushSubscriber)
		notifier = push.NewNotifier(pushSvc, pushStore, pushLogger)
		pushH = handler.NewPushHandler(pushStore, pushSvc, pushLogger)
	}

	generator := jobs.NewGenerator(reminders, tasks, hub, notifierOrNil(notifier), logger.With("component", "generator"))
	digest := jobs.NewDigest(userStore, tasks, mailer, logger.With("component", "digest"))

	return &Server{
		db:        db,
		hub:       hub,
		reminderH: handler.NewReminderHandler(reminders, hub, logger.With("component", "reminder")),
		taskH:     handler.NewTaskHandler(tasks, hub, logger.With("component", "task")),
		jobH:      handler.NewJobHandler(generator, digest, logger.With("component", "jobs")),
		intakeH: handler.NewIntakeHandler(
			requestStore, ministryStore, mailer, uploader, hub, notifier,
			cfg.AuthSecret, cfg.BaseURL, logger.With("component", "intake"),
		),
		adminH: handler.NewAdminHandler(
			requestStore, registry, ministryStore, mailer, aiClient, hub,
			cfg.SummaryRecipient, logger.With("component", "admin"),
		),
		commentH:    handler.NewCommentHandler(commentStore, requestStore, hub, cfg.AuthSecret, logger.With("component", "comment")),
		userH:       handler.NewUserHandler(userStore, logger.With("component", "user")),
		pushH:       pushH,
		userStore:   userStore,
		generator:   generator,
		digest:      digest,
		rateLimiter: middleware.NewRateLimiter(),
		cfg:         cfg,
		logger:      logger,
	}
}

// notifierOrNil keeps a typed-nil *push.Notifier from sneaking into the
// generator's interface field.
func notifierOrNil(n *push.Notifier) jobs.TaskNotifier {
	if n == nil {
		return nil
	}
	return n
}

// Generator returns the task generator for in-process scheduling.
func (s *Server) Generator() *jobs.Generator {
	return s.generator
}

// Digest returns the digest job for in-process scheduling.
func (s *Server) Digest() *jobs.Digest {
	return s.digest
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/submit/announcement", s.rateLimitedHandler(s.intakeH.SubmitAnnouncement))
	outerMux.HandleFunc("POST /api/submit/website-update", s.rateLimitedHandler(s.intakeH.SubmitWebsiteUpdate))
	outerMux.HandleFunc("POST /api/submit/sms", s.rateLimitedHandler(s.intakeH.SubmitSMS))
	outerMux.HandleFunc("POST /api/submit/av", s.rateLimitedHandler(s.intakeH.SubmitAV))
	outerMux.HandleFunc("POST /api/submit/flyer-review", s.rateLimitedHandler(s.intakeH.SubmitFlyerReview))
	outerMux.HandleFunc("POST /api/submit/graphic-design", s.rateLimitedHandler(s.intakeH.SubmitGraphicDesign))
	outerMux.HandleFunc("GET /requests/{id}/comments", s.commentH.PublicList)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Scheduled-trigger routes, shared-secret guarded
	jobToken := middleware.RequireJobToken(s.cfg.JobToken)
	outerMux.Handle("POST /api/jobs/generate-tasks", jobToken(http.HandlerFunc(s.jobH.RunGenerator)))
	outerMux.Handle("POST /api/jobs/send-digests", jobToken(http.HandlerFunc(s.jobH.RunDigest)))

	// Protected routes, wrapped with RequireAuth
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.cfg.AuthSecret, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Reminder API routes
	mux.HandleFunc("POST /api/reminders", s.reminderH.Create)
	mux.HandleFunc("GET /api/reminders", s.reminderH.List)
	mux.HandleFunc("GET /api/reminders/{id}", s.reminderH.Get)
	mux.HandleFunc("PATCH /api/reminders/{id}", s.reminderH.Update)
	mux.HandleFunc("DELETE /api/reminders/{id}", s.reminderH.Delete)
	mux.HandleFunc("POST /api/reminders/seed", s.reminderH.Seed)

	// Task API routes
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PATCH /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)

	// Profile routes
	mux.HandleFunc("GET /api/me", s.userH.Me)
	mux.HandleFunc("PUT /api/me/digest", s.userH.SetDigest)

	// Admin triage routes
	mux.Handle("GET /api/admin/requests/{type}", s.admin(s.adminH.ListRequests))
	mux.Handle("PUT /api/admin/requests/{type}/{id}/completed", s.admin(s.adminH.SetCompleted))
	mux.Handle("POST /api/admin/requests/{type}/{id}/social-copy", s.admin(s.adminH.SocialCopy))
	mux.Handle("POST /api/admin/requests/{type}/{id}/comments", s.admin(s.commentH.Create))
	mux.Handle("GET /api/admin/requests/{type}/{id}/comments", s.admin(s.commentH.List))
	mux.Handle("PUT /api/admin/announcements/{id}/approval", s.admin(s.adminH.SetApproval))
	mux.Handle("POST /api/admin/summarize", s.admin(s.adminH.Summarize))
	mux.Handle("GET /api/admin/ministries", s.admin(s.adminH.ListMinistries))
	mux.Handle("PUT /api/admin/users/{email}/role", s.admin(s.userH.SetRole))

	// Push notification API routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
		mux.HandleFunc("POST /api/push/test", s.pushH.TestNotification)
	}

	// WebSocket
	mux.HandleFunc("GET /ws", events.HandleWebSocket(s.hub, s.logger.With("component", "events")))
}

func (s *Server) admin(h http.HandlerFunc) http.Handler {
	return middleware.RequireAdmin(h)
}
