package api

import (
	"context"
	"net/http"
	"time"
)

// Healthz is the liveness probe. It never touches the database.
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200  {object} object{status=string,timestamp=string}
// @Router       /healthz [get]
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Clock is the part of the store the connectivity probe needs.
type Clock interface {
	Now(ctx context.Context) (time.Time, error)
}

// DBCheck runs a trivial query and reports the database server time. Unlike
// the record endpoints it returns the raw failure message.
// @Summary      Database connectivity probe
// @Tags         system
// @Produce      json
// @Success      200  {object} object{db=string,time=string}
// @Failure      500  {object} object{error=string}
// @Router       /db-check [get]
func DBCheck(store Clock) http.HandlerFunc {
	logger := newAPILogger()
	return func(w http.ResponseWriter, r *http.Request) {
		now, err := store.Now(r.Context())
		if err != nil {
			logger.Printf("db-check: %s", logSafe(err.Error()))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"db":   "connected",
			"time": now,
		})
	}
}
