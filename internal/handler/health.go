package handler

import (
	"net/http"
	"time"

	"github.com/teammanager/server-go/internal/database"
	"github.com/teammanager/server-go/internal/redis"
)

type HealthHandler struct {
	db    *database.DB
	redis *redis.Client
}

func NewHealthHandler(db *database.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UnixMilli(),
	})
}

// DBStatus reports backend connectivity for operational checks.
func (h *HealthHandler) DBStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"database": "ok", "redis": "ok"}
	code := http.StatusOK

	if err := h.db.Ping(r.Context()); err != nil {
		status["database"] = "unreachable"
		code = http.StatusServiceUnavailable
	}
	if err := h.redis.Ping(r.Context()).Err(); err != nil {
		status["redis"] = "unreachable"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, status)
}
