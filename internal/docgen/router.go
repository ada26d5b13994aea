package docgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// ModelRouter iterates a preference-ordered model list, classifying backend
// errors and applying retry/backoff/fallback policy. All transient policy
// lives here; the BackendClient never retries on its own.
type ModelRouter struct {
	backend BackendClient
	policy  RoutingPolicy
	base    ChatParams
	limiter *RateLimiter

	mu                sync.Mutex
	disabledModels    map[string]struct{}
	forcedServiceTier string
}

// NewModelRouter builds a router around a backend, a frozen parameter
// snapshot, and the shared rate limiter.
func NewModelRouter(backend BackendClient, policy RoutingPolicy, base ChatParams, limiter *RateLimiter) *ModelRouter {
	return &ModelRouter{
		backend:        backend,
		policy:         policy,
		base:           base,
		limiter:        limiter,
		disabledModels: make(map[string]struct{}),
	}
}

// ValidateModels intersects the configured preferred models with the
// backend's advertised catalog, preserving preferred order. Fails if the
// intersection is empty.
func (r *ModelRouter) ValidateModels(ctx context.Context) ([]string, error) {
	available, err := r.backend.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	var models []string
	var missing []string
	for _, m := range r.policy.PreferredModels {
		if _, ok := available[m]; ok {
			models = append(models, m)
		} else {
			missing = append(missing, m)
		}
	}
	if len(missing) > 0 {
		// caller logs at WARN; the router itself stays log-library agnostic
		_ = missing
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("no preferred model is available from the backend")
	}
	return models, nil
}

// Generate tries models in order, returning the generated text and the
// model that produced it.
func (r *ModelRouter) Generate(ctx context.Context, messages []Message, models []string) (string, string, error) {
	var lastErr error

	for _, model := range models {
		if r.isDisabled(model) {
			continue
		}

		for attempt := 1; attempt <= r.policy.MaxAttemptsPerModel; attempt++ {
			params := r.base
			if tier := r.forcedTier(); tier != "" {
				params.ServiceTier = tier
			}

			if err := r.limiter.Acquire(ctx); err != nil {
				return "", "", err
			}

			text, headers, err := r.backend.Chat(ctx, model, messages, params)
			if err == nil {
				r.limiter.ObserveSuccess(headers)
				return text, model, nil
			}

			lastErr = err

			var be *BackendError
			if !errors.As(err, &be) {
				// unexpected transport error: advance to the next model
				break
			}

			switch {
			case be.Status == 429:
				r.limiter.ObserveRateLimited(headers)
				continue

			case be.Status == 498 && strings.Contains(strings.ToLower(be.Message), "capacity_exceeded"):
				r.setForcedTier("on-demand")
				time.Sleep(200 * time.Millisecond)
				continue

			case be.Status == 400 && strings.Contains(be.Message, "service_tier") && strings.Contains(be.Message, "not available for this org"):
				r.setForcedTier("on-demand")
				time.Sleep(200 * time.Millisecond)
				continue

			case be.Status >= 500:
				time.Sleep(jitteredBackoff(r.policy, attempt))
				continue

			case be.Status == 400 || be.Status == 404 || be.Status == 422:
				r.disable(model)

			default:
				// fall through to next model
			}
			break
		}
	}

	return "", "", fmt.Errorf("exhausted all models: %w", lastErr)
}

func jitteredBackoff(policy RoutingPolicy, attempt int) time.Duration {
	base := policy.BackoffBaseSeconds * float64(int64(1)<<uint(attempt-1))
	if base > policy.BackoffCapSeconds {
		base = policy.BackoffCapSeconds
	}
	jittered := base * (0.7 + rand.Float64()*0.6)
	return time.Duration(jittered * float64(time.Second))
}

func (r *ModelRouter) isDisabled(model string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.disabledModels[model]
	return ok
}

func (r *ModelRouter) disable(model string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disabledModels[model] = struct{}{}
}

func (r *ModelRouter) forcedTier() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forcedServiceTier
}

func (r *ModelRouter) setForcedTier(tier string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forcedServiceTier = tier
}
