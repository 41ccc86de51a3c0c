package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/ozownz/meme-battles/handlers"
	"github.com/ozownz/meme-battles/middleware"
)

// SetupRoutes собирает все маршруты приложения на переданном роутере.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	battleHandler *handlers.BattleHandler,
	adminHandler *handlers.AdminHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	router.Get("/swagger/*", httpSwagger.Handler())

	// Публичные маршруты аутентификации
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/confirm-email", authHandler.ConfirmEmail)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)
	})

	router.Route("/battles", func(r chi.Router) {
		// Просмотр баттлов открыт для всех
		r.Get("/", battleHandler.ListHandler)
		r.Get("/{battleID}", battleHandler.GetByIDHandler)
		r.Get("/{battleID}/participants", battleHandler.ListParticipantsHandler)

		// Управление требует аутентификации
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", battleHandler.CreateHandler)
			r.Post("/{battleID}/advance", battleHandler.AdvanceStatusHandler)
			r.Delete("/{battleID}", battleHandler.DeleteHandler)
			r.Post("/{battleID}/join", battleHandler.JoinHandler)
			r.Post("/{battleID}/invite", battleHandler.InviteHandler)
		})
	})

	router.Route("/users", func(r chi.Router) {
		r.Get("/{id}", userHandler.GetUserByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Put("/{id}", userHandler.UpdateUserByID)
			r.Post("/{id}/avatar", userHandler.UploadAvatar)
		})
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/users", adminHandler.ListUsers)
		r.Put("/users/{id}/role", adminHandler.AssignRole)
	})

	// Живые обновления по баттлу
	router.Get("/ws/battles/{battleID}", webSocketHandler.ServeWs)
}
