package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"pagebuddy-backend/internal/handlers"
	"pagebuddy-backend/internal/middleware"
	"pagebuddy-backend/internal/websocket"
)

func New(
	sessionHandler *handlers.SessionHandler,
	contentHandler *handlers.ContentHandler,
	artifactHandler *handlers.ArtifactHandler,
	chatHandler *handlers.ChatHandler,
	speechHandler *handlers.SpeechHandler,
	exportHandler *handlers.ExportHandler,
	extensionHandler *handlers.ExtensionHandler,
	jobHandler *handlers.JobHandler,
	wsHub *websocket.Hub,
	frontendURL string,
	extensionSharedKey string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Generation endpoints hit paid upstreams, so they get a tighter window
	// than content acquisition.
	generateLimiter := middleware.NewRateLimiter(30, time.Minute)
	speechLimiter := middleware.NewRateLimiter(20, time.Minute)
	extensionLimiter := middleware.NewRateLimiter(60, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Session Routes ────
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Get("/{id}", sessionHandler.Get)
			r.Put("/{id}/preferences", sessionHandler.SetPreferences)
		})

		// ──── Content Acquisition ────
		r.Route("/content", func(r chi.Router) {
			r.Post("/fetch", contentHandler.Fetch)
			r.Post("/paste", contentHandler.Paste)
			r.Post("/upload", contentHandler.Upload)
		})

		// ──── Generation ────
		r.Group(func(r chi.Router) {
			r.Use(generateLimiter.Middleware)
			r.Post("/summarize", artifactHandler.Summarize)
			r.Post("/flashcards", artifactHandler.Flashcards)
			r.Post("/todos", artifactHandler.Todos)
			r.Post("/topics", artifactHandler.Topics)
			r.Post("/translate", artifactHandler.Translate)
			r.Post("/chat", chatHandler.Send)
		})

		// ──── Speech ────
		r.Group(func(r chi.Router) {
			r.Use(speechLimiter.Middleware)
			r.Post("/narrate", speechHandler.Narrate)
			r.Post("/transcribe", speechHandler.Transcribe)
		})

		// ──── Export ────
		r.Post("/export/pptx", exportHandler.PPTX)

		// ──── History (requires a database) ────
		r.Get("/summaries", artifactHandler.ListSummaries)
		r.Get("/summaries/{id}", artifactHandler.GetSummary)
		r.Delete("/summaries/{id}", artifactHandler.DeleteSummary)
		r.Get("/decks", artifactHandler.ListDecks)
		r.Get("/decks/{id}", artifactHandler.GetDeck)
		r.Delete("/decks/{id}", artifactHandler.DeleteDeck)

		// ──── Companion Extension ────
		r.Route("/extension", func(r chi.Router) {
			r.Use(extensionLimiter.Middleware)
			r.Use(middleware.ExtensionKey(extensionSharedKey))
			r.Post("/content", extensionHandler.PushContent)
			r.Post("/flashcards", extensionHandler.PushFlashcards)
			r.Post("/audio", extensionHandler.PushAudio)
		})

		// ──── Job Routes ────
		r.Get("/jobs/{id}", jobHandler.Get)

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
