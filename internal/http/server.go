package httpapi

import (
	"net/http"
	"time"

	"liftacademy-backend-go/internal/config"
	"liftacademy-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	DB         *sqlx.DB
	Config     config.Config
	Tokens     services.TokenService
	Guard      *services.GuardCache
	Limiter    *RateLimiter
	Checkout   services.CheckoutService
	Provider   services.VideoProvider
	MetricsHub *services.MetricsHub
}

func NewServer(db *sqlx.DB, cfg config.Config, hub *services.MetricsHub) *Server {
	tokens := services.TokenService{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  time.Duration(cfg.AccessTTLSeconds) * time.Second,
		RefreshTTL: time.Duration(cfg.RefreshTTLSeconds) * time.Second,
	}
	guard := services.NewGuardCache(
		time.Duration(cfg.GuardCacheTTLSeconds)*time.Second,
		func(userID string) (services.GuardEntry, error) {
			status, err := services.GetUserStatus(db, userID)
			if err != nil {
				return services.GuardEntry{}, err
			}
			roles, err := services.FetchRoles(db, userID)
			if err != nil {
				return services.GuardEntry{}, err
			}
			return services.GuardEntry{Status: status, Roles: roles}, nil
		},
	)
	return &Server{
		DB:      db,
		Config:  cfg,
		Tokens:  tokens,
		Guard:   guard,
		Limiter: NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
		Checkout: services.CheckoutService{
			SecretKey:    cfg.StripeSecretKey,
			SuccessURL:   cfg.CheckoutSuccessURL,
			CancelURL:    cfg.CheckoutCancelURL,
			TierPriceIDs: cfg.TierPriceIDs,
		},
		Provider: services.VideoProvider{
			BaseURL: cfg.VideoProviderBaseURL,
			Token:   cfg.VideoProviderToken,
		},
		MetricsHub: hub,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(Recoverer)
	r.Use(RequestLogger)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", s.Health)

		api.Route("/auth", func(auth chi.Router) {
			auth.Use(s.Limiter.Middleware)
			auth.Post("/register", s.Register)
			auth.Post("/login", s.Login)
			auth.Post("/refresh", s.Refresh)
			auth.Post("/logout", s.Logout)
		})

		api.Route("/me", func(me chi.Router) {
			me.Use(s.WithAuth)
			me.Get("/", s.Me)
			me.Put("/profile", s.UpdateProfile)
			me.Put("/password", s.ChangePassword)
			me.Delete("/subscription", s.CancelMySubscription)
			me.Delete("/", s.DeleteAccount)
			me.Post("/ping", s.Ping)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(s.WithAuth)
			admin.Use(RequireAnyRole("SUPER_ADMIN", "CONTENT_ADMIN", "SUPPORT_ADMIN"))

			admin.Route("/analytics", func(analytics chi.Router) {
				analytics.Get("/overview", s.AnalyticsOverview)
				analytics.Get("/signups", s.AnalyticsSignups)
				analytics.Get("/views", s.AnalyticsViews)
				analytics.Get("/revenue", s.AnalyticsRevenue)
				analytics.Get("/top-videos", s.AnalyticsTopVideos)
			})

			admin.With(RequireRole("SUPER_ADMIN")).Get("/metrics/history", s.MetricsHistory)

			admin.Route("/users", func(users chi.Router) {
				users.Use(RequireRole("SUPER_ADMIN"))
				users.Get("/", s.ListUsers)
				users.Post("/", s.CreateUser)
				users.Put("/{userId}", s.UpdateUser)
				users.Delete("/{userId}", s.DeleteUser)
				users.Post("/{userId}/roles", s.AssignRole)
				users.Delete("/{userId}/roles/{role}", s.RemoveRole)
			})

			admin.Group(func(content chi.Router) {
				content.Use(RequireAnyRole("CONTENT_ADMIN", "SUPER_ADMIN"))

				content.Route("/disciplines", func(disciplines chi.Router) {
					disciplines.Get("/", s.ListDisciplines)
					disciplines.Post("/", s.CreateDiscipline)
					disciplines.Put("/{code}", s.UpdateDiscipline)
					disciplines.Delete("/{code}", s.DeleteDiscipline)
				})

				content.Route("/categories", func(categories chi.Router) {
					categories.Get("/", s.ListCategories)
					categories.Post("/", s.CreateCategory)
					categories.Put("/{categoryId}", s.UpdateCategory)
					categories.Delete("/{categoryId}", s.DeleteCategory)
				})

				content.Route("/instructors", func(instructors chi.Router) {
					instructors.Get("/", s.ListInstructors)
					instructors.Post("/", s.CreateInstructor)
					instructors.Put("/{instructorId}", s.UpdateInstructor)
					instructors.Delete("/{instructorId}", s.DeleteInstructor)
				})

				content.Route("/videos", func(videos chi.Router) {
					videos.Get("/", s.AdminListVideos)
					videos.Post("/", s.CreateVideo)
					videos.Get("/{videoId}", s.AdminVideoDetail)
					videos.Put("/{videoId}", s.UpdateVideo)
					videos.Delete("/{videoId}", s.DeleteVideo)
					videos.Post("/{videoId}/publish", s.PublishVideo)
					videos.Post("/{videoId}/unpublish", s.UnpublishVideo)
					videos.Post("/{videoId}/archive", s.ArchiveVideo)
					videos.Post("/{videoId}/refresh-status", s.RefreshVideoStatus)
				})
			})

			admin.Route("/questions", func(questions chi.Router) {
				questions.Use(RequireAnyRole("SUPPORT_ADMIN", "SUPER_ADMIN"))
				questions.Get("/", s.ListQuestions)
				questions.Get("/{questionId}", s.QuestionDetail)
				questions.Post("/{questionId}/approve", s.ApproveQuestion)
				questions.Post("/{questionId}/hide", s.HideQuestion)
				questions.Post("/{questionId}/answers", s.CreateAnswer)
				questions.Delete("/{questionId}/answers/{answerId}", s.DeleteAnswer)
			})
		})

		api.Route("/checkout", func(checkout chi.Router) {
			checkout.With(s.WithAuth, s.Limiter.Middleware).Post("/session", s.CreateCheckoutSession)
			checkout.Get("/success", s.CheckoutSuccess)
			checkout.Get("/cancel", s.CheckoutCancel)
		})

		api.Route("/public", func(pub chi.Router) {
			pub.Get("/disciplines", s.PublicDisciplines)
			pub.Get("/categories", s.PublicCategories)
			pub.Get("/videos", s.PublicVideos)
			pub.Get("/videos/{slug}", s.PublicVideoDetail)
			pub.Post("/videos/{slug}/view", s.TrackVideoView)
		})

		api.Route("/media", func(media chi.Router) {
			media.With(s.WithAuth).Post("/uploads/avatar", s.UploadAvatar)
			media.With(s.WithAuth, RequireAnyRole("CONTENT_ADMIN", "SUPER_ADMIN")).Post("/uploads/thumbnail", s.UploadThumbnail)
			media.Get("/assets/{assetId}/content", s.MediaContent)
		})
	})

	r.Get("/ws/metrics", s.MetricsSocket)
	return r
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.DB.Ping(); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
