package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Vodeneev/openingalert/internal/pkg/storage"
)

type handler struct {
	opts    Options
	started time.Time
}

type competitionJSON struct {
	Bookmaker   string    `json:"bookmaker"`
	Competition string    `json:"competition"`
	FirstSeen   time.Time `json:"first_seen"`
}

type competitionsResponse struct {
	Total        int               `json:"total"`
	Count        int               `json:"count"`
	Competitions []competitionJSON `json:"competitions"`
}

func (h *handler) ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("pong\n"))
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := h.opts.Store.Load(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "store unavailable", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
	})
}

// competitions lists stored identities sorted by key.
// Query params: limit (0 lists everything).
func (h *handler) competitions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	limit := h.opts.ListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer", nil)
			return
		}
		limit = n
	}

	c, err := h.opts.Store.Load(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load competitions", err)
		return
	}
	respondJSON(w, http.StatusOK, listCompetitions(c, limit))
}

func listCompetitions(c storage.Competitions, limit int) competitionsResponse {
	ids := c.Identities()
	resp := competitionsResponse{Total: len(ids), Competitions: []competitionJSON{}}
	for _, id := range ids {
		if limit > 0 && len(resp.Competitions) == limit {
			break
		}
		resp.Competitions = append(resp.Competitions, competitionJSON{
			Bookmaker:   id.Bookmaker,
			Competition: id.Competition,
			FirstSeen:   c[id].UTC(),
		})
	}
	resp.Count = len(resp.Competitions)
	return resp
}

// run triggers a detection pass and reports its outcome.
func (h *handler) run(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.RunTimeout)
	defer cancel()

	start := time.Now()
	slog.Info("Manual run triggered", "remote", r.RemoteAddr)
	res, err := h.opts.Runner.Run(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "run failed", err)
		return
	}

	fresh := make([]string, 0, len(res.Fresh))
	for _, id := range res.Fresh {
		fresh = append(fresh, id.String())
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rows":            res.Rows,
		"current":         len(res.Current),
		"new":             fresh,
		"pruned":          res.Pruned,
		"notify_failures": res.NotifyFailures,
		"store_size":      res.StoreSize,
		"duration":        time.Since(start).Round(time.Millisecond).String(),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		slog.Error(message, "error", err)
	}
	body := map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
		"code":    status,
	}
	respondJSON(w, status, body)
}
