package handler

import (
	"context"
	"net/http"

	"github.com/raecer/intake-api/internal/api/response"
	"github.com/raecer/intake-api/internal/llm"
)

// Pinger reports reachability of a backing collaborator
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck returns a simple health check response
func HealthCheck(llmRouter *llm.Router, collaborators map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{
			"status":    "ok",
			"providers": llmRouter.ListProviders(),
		}

		healthy := true
		for name, pinger := range collaborators {
			if err := pinger.Ping(r.Context()); err != nil {
				status[name] = "unreachable"
				healthy = false
				continue
			}
			status[name] = "ok"
		}

		if !healthy {
			status["status"] = "degraded"
			response.JSON(w, http.StatusServiceUnavailable, status)
			return
		}

		response.OK(w, status)
	}
}

// ListProviders returns registered model providers
func ListProviders(llmRouter *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := llmRouter.ListProviders()
		providers := make([]map[string]any, 0, len(names))

		for _, name := range names {
			p, err := llmRouter.GetProvider(name)
			if err != nil {
				continue
			}
			providers = append(providers, map[string]any{
				"name":    p.Name(),
				"models":  p.AvailableModels(),
				"default": p.Name() == llmRouter.DefaultProvider(),
			})
		}

		response.OK(w, map[string]any{
			"providers":        providers,
			"default_provider": llmRouter.DefaultProvider(),
		})
	}
}
