package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/raecer/intake-api/internal/api/handler"
	customMiddleware "github.com/raecer/intake-api/internal/api/middleware"
	"github.com/raecer/intake-api/internal/config"
	"github.com/raecer/intake-api/internal/domain"
	"github.com/raecer/intake-api/internal/llm"
	"github.com/raecer/intake-api/internal/llm/anthropic"
	"github.com/raecer/intake-api/internal/llm/gemini"
	"github.com/raecer/intake-api/internal/llm/ollama"
	"github.com/raecer/intake-api/internal/llm/openai"
	"github.com/raecer/intake-api/internal/ner"
	"github.com/raecer/intake-api/internal/proctcae"
	"github.com/raecer/intake-api/internal/repository/redis"
	"github.com/raecer/intake-api/internal/service"
)

// NewRouter creates and configures the HTTP router. redisClient and archive
// may be nil depending on the configured backends.
func NewRouter(cfg *config.Config, store domain.SessionStore, redisClient *redis.Client, archive service.Archiver) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Initialize LLM Router with providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)

	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.LLM.DefaultProvider)

	if cfg.LLM.Anthropic.APIKey != "" {
		llmRouter.RegisterProvider(anthropic.NewProvider(cfg.LLM.Anthropic.APIKey, cfg.LLM.Anthropic.Model))
	}
	if cfg.LLM.OpenAI.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model))
	}
	if cfg.LLM.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini.APIKey, cfg.LLM.Gemini.Model))
	}
	if cfg.LLM.Ollama.Host != "" {
		log.Info().Str("host", cfg.LLM.Ollama.Host).Msg("Registering Ollama provider")
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.DefaultModel))
	}
	if len(llmRouter.ListProviders()) == 0 {
		log.Warn().Msg("No LLM providers configured, conversation turns will fail")
	}

	// Entity extraction is optional
	var extractor ner.Extractor
	if cfg.NER.Endpoint != "" {
		extractor = ner.NewHTTPExtractor(cfg.NER.Endpoint, cfg.NER.Token)
	}

	conversationService := service.NewConversationService(
		store,
		llmRouter,
		extractor,
		proctcae.NewMapper(),
		archive,
		cfg.LLM.MaxTokens,
	)

	conversationHandler := handler.NewConversationHandler(conversationService)

	collaborators := map[string]handler.Pinger{}
	if redisClient != nil {
		collaborators["redis"] = redisClient
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck(llmRouter, collaborators))
		r.Get("/llm-providers", handler.ListProviders(llmRouter))

		r.Group(func(r chi.Router) {
			if cfg.Security.RateLimit.Enabled && redisClient != nil {
				rateLimiter := redis.NewRateLimiter(
					redisClient,
					cfg.Security.RateLimit.RequestsPerMinute,
					cfg.Security.RateLimit.Burst,
				)
				r.Use(customMiddleware.NewRateLimitMiddleware(rateLimiter).Limit)
			}

			r.Route("/conversation", func(r chi.Router) {
				r.Post("/start", conversationHandler.Start)

				r.Route("/{sessionID}", func(r chi.Router) {
					r.Post("/message", conversationHandler.Message)
					r.Post("/end", conversationHandler.End)
					r.Get("/status", conversationHandler.Status)
					r.Get("/history", conversationHandler.History)
					r.Delete("/", conversationHandler.Delete)
				})
			})

			r.Get("/conversations", conversationHandler.List)
			r.Post("/cleanup", conversationHandler.Cleanup)
		})
	})

	return r
}
