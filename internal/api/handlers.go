// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Aryam2121/CoalMine-B/internal/auth"
	"github.com/Aryam2121/CoalMine-B/internal/config"
	"github.com/Aryam2121/CoalMine-B/internal/gateway"
	"github.com/Aryam2121/CoalMine-B/internal/ledger"
	"github.com/Aryam2121/CoalMine-B/internal/logging"
	"github.com/Aryam2121/CoalMine-B/internal/monitor"
)

// Handler serves the HTTP read surface and the WebSocket upgrade endpoint.
type Handler struct {
	store    *monitor.Store
	ledger   ledger.Ledger
	hub      *gateway.Hub
	dispatch gateway.Handler
	verifier auth.Verifier
	gwCfg    config.GatewayConfig
	upgrader websocket.Upgrader
}

// NewHandler wires the handler to its collaborators. corsOrigins bounds
// which origins may open WebSocket connections; "*" allows any.
func NewHandler(store *monitor.Store, ldg ledger.Ledger, hub *gateway.Hub, dispatch gateway.Handler, verifier auth.Verifier, gwCfg config.GatewayConfig, corsOrigins []string) *Handler {
	return &Handler{
		store:    store,
		ledger:   ldg,
		hub:      hub,
		dispatch: dispatch,
		verifier: verifier,
		gwCfg:    gwCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(corsOrigins),
		},
	}
}

// originChecker builds the upgrade origin policy from the allowed list.
// Requests without an Origin header (non-browser clients) are accepted.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// bearerToken extracts the auth token from the Authorization header or,
// for WebSocket clients that cannot set headers, the token query param.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// Health reports liveness and the current connection count.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"connections": h.hub.ClientCount(),
	})
}

// WebSocket authenticates the caller and upgrades the connection. A
// request without a valid token is rejected before the upgrade; no
// unauthenticated connection ever reaches the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	identity, err := h.verifier.Verify(bearerToken(r))
	if err != nil {
		logging.Warn().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Msg("WebSocket authentication failed")
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logging.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := h.hub.NewClient(conn, identity, h.gwCfg, h.dispatch)
	h.hub.Register(client)

	// The request context dies with this handler; the connection outlives it.
	client.Start(context.Background())
}

// FacilitySnapshot returns the current snapshot for one mine.
func (h *Handler) FacilitySnapshot(w http.ResponseWriter, r *http.Request) {
	mineID := chi.URLParam(r, "mineID")
	if mineID == "" {
		respondError(w, http.StatusBadRequest, "mine id required")
		return
	}

	snap, err := h.store.GetCurrent(r.Context(), mineID)
	if errors.Is(err, monitor.ErrFacilityNotFound) {
		respondError(w, http.StatusNotFound, "facility not found")
		return
	}
	if err != nil {
		logging.Error().Err(err).Str("mine_id", mineID).Msg("Failed to read snapshot")
		respondError(w, http.StatusInternalServerError, "failed to read snapshot")
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// UnresolvedAlerts returns every alert that has not been resolved.
func (h *Handler) UnresolvedAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.ledger.UnresolvedAlerts(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to list unresolved alerts")
		respondError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	respondJSON(w, http.StatusOK, alerts)
}

// ActiveEmergencies returns emergencies still in active or responding status.
func (h *Handler) ActiveEmergencies(w http.ResponseWriter, r *http.Request) {
	emergencies, err := h.ledger.ActiveEmergencies(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to list active emergencies")
		respondError(w, http.StatusInternalServerError, "failed to list emergencies")
		return
	}
	respondJSON(w, http.StatusOK, emergencies)
}

// Authenticate is the bearer-token gate for the REST read surface.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := h.verifier.Verify(bearerToken(r)); err != nil {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
