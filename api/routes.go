package api

import (
	"net/http"

	"log/slog"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sholas-io/onboard/internal/config"
	"github.com/sholas-io/onboard/internal/db"
	"github.com/sholas-io/onboard/internal/repository/sqlite"
	"github.com/sholas-io/onboard/internal/storage"
	"github.com/sholas-io/onboard/pkg/models"
)

// SetupRoutes wires repositories, handlers and middleware into the HTTP
// surface. The returned QuizHandler is handed back so the server can release
// session timers on shutdown.
func SetupRoutes(cfg *config.Config, version, buildTime string, database *db.DB, blobs *storage.BlobStore, enq TaskEnqueuer, importSchema []byte, l *slog.Logger) (http.Handler, *QuizHandler, error) {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(database, l)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, repo, cfg.AdminEmail, cfg.AdminPassword, cfg.JWTSecret, cfg.TokenDuration)
	profileHandler := NewProfileHandler(repo, blobs)
	quizHandler := NewQuizHandler(repo, repo, cfg.QuizDuration, l)
	uploadHandler := NewUploadHandler(blobs)
	jobHandler := NewJobHandler(repo, repo)
	adminHandler := NewAdminHandler(repo, repo, enq, cfg.PromotionDelay)
	questionHandler, err := NewQuestionHandler(repo, importSchema)
	if err != nil {
		return nil, nil, err
	}

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/v1/auth/login", authHandler.Login).Methods("POST")

	// Uploaded files are served back for admin review.
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(blobs.Dir())))).Methods("GET")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/logout", authHandler.Logout).Methods("POST")
	authV1.HandleFunc("/me", authHandler.Me).Methods("GET")

	// Candidate endpoints
	apiV1.HandleFunc("/profile", profileHandler.GetProfile).Methods("GET")
	apiV1.HandleFunc("/profile", profileHandler.SaveProfile).Methods("PUT")
	apiV1.HandleFunc("/profile/documents", profileHandler.SubmitDocuments).Methods("POST")

	apiV1.HandleFunc("/quiz/session", quizHandler.Start).Methods("POST")
	apiV1.HandleFunc("/quiz/session", quizHandler.Questions).Methods("GET")
	apiV1.HandleFunc("/quiz/session/answer", quizHandler.Answer).Methods("POST")
	apiV1.HandleFunc("/quiz/session/submit", quizHandler.Submit).Methods("POST")

	apiV1.HandleFunc("/uploads", uploadHandler.Upload).Methods("POST")

	apiV1.HandleFunc("/jobs", jobHandler.ListJobs).Methods("GET")
	apiV1.HandleFunc("/jobs/{jobID}/apply", jobHandler.Apply).Methods("POST")
	apiV1.HandleFunc("/applications", jobHandler.MyApplications).Methods("GET")

	// Admin endpoints
	adminV1 := apiV1.PathPrefix("/admin").Subrouter()
	adminV1.Use(RequireRole(models.RoleAdmin))

	adminV1.HandleFunc("/profiles", adminHandler.ListProfiles).Methods("GET")
	adminV1.HandleFunc("/profiles/{userID}", adminHandler.GetProfile).Methods("GET")
	adminV1.HandleFunc("/profiles/{userID}/quiz/approve", adminHandler.ApproveQuiz).Methods("POST")
	adminV1.HandleFunc("/profiles/{userID}/quiz/reset", adminHandler.ResetQuiz).Methods("POST")
	adminV1.HandleFunc("/profiles/{userID}/documents/approve", adminHandler.ApproveDocuments).Methods("POST")
	adminV1.HandleFunc("/profiles/{userID}/documents/reject", adminHandler.RejectDocuments).Methods("POST")
	adminV1.HandleFunc("/applications", adminHandler.ListApplications).Methods("GET")

	adminV1.HandleFunc("/jobs", jobHandler.CreateJob).Methods("POST")
	adminV1.HandleFunc("/jobs/{jobID}", jobHandler.UpdateJob).Methods("PUT")
	adminV1.HandleFunc("/jobs/{jobID}", jobHandler.DeleteJob).Methods("DELETE")

	adminV1.HandleFunc("/questions", questionHandler.ListQuestions).Methods("GET")
	adminV1.HandleFunc("/questions", questionHandler.CreateQuestion).Methods("POST")
	adminV1.HandleFunc("/questions/import", questionHandler.ImportQuestions).Methods("POST")
	adminV1.HandleFunc("/questions/{questionID}", questionHandler.UpdateQuestion).Methods("PUT")
	adminV1.HandleFunc("/questions/{questionID}", questionHandler.DeleteQuestion).Methods("DELETE")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	return c.Handler(r), quizHandler, nil
}
