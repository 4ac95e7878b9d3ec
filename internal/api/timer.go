package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/LISDEAD/beep/internal/core/bridge"
	"github.com/LISDEAD/beep/internal/core/countdown"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 10

type timerResponse struct {
	Total     int             `json:"total"`
	Remaining int             `json:"remaining"`
	Phase     countdown.Phase `json:"phase"`
	Label     string          `json:"label"`
	Progress  float64         `json:"progress"`
}

type durationRequest struct {
	Seconds *int `json:"seconds"`
}

type timerHandler struct {
	timer bridge.Controller
}

// RegisterTimerRoutes exposes the timer commands under /api/timer.
func (s *Server) RegisterTimerRoutes(timer bridge.Controller) {
	handler := &timerHandler{timer: timer}

	s.Router.HandleFunc("/api/timer", handler.get).Methods(http.MethodGet)
	s.Router.HandleFunc("/api/timer/{command:start|pause|reset}", handler.command).Methods(http.MethodPost)
	s.Router.HandleFunc("/api/timer/duration", handler.configure).Methods(http.MethodPut)
}

func (handler *timerHandler) get(w http.ResponseWriter, _ *http.Request) {
	handler.respond(w)
}

func (handler *timerHandler) command(w http.ResponseWriter, r *http.Request) {
	var err error
	switch mux.Vars(r)["command"] {
	case "start":
		err = handler.timer.Start()
	case "pause":
		err = handler.timer.Pause()
	case "reset":
		err = handler.timer.Reset()
	}
	if err != nil {
		writeTimerError(w, err)
		return
	}
	handler.respond(w)
}

func (handler *timerHandler) configure(w http.ResponseWriter, r *http.Request) {
	var request durationRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_request", "body must be {\"seconds\": <non-negative integer>}")
		return
	}
	if request.Seconds == nil {
		WriteError(w, http.StatusBadRequest, "bad_request", "seconds is required")
		return
	}

	if err := handler.timer.Configure(*request.Seconds); err != nil {
		writeTimerError(w, err)
		return
	}
	handler.respond(w)
}

func (handler *timerHandler) respond(w http.ResponseWriter) {
	snapshot, err := handler.timer.Snapshot()
	if err != nil {
		writeTimerError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, timerResponse{
		Total:     snapshot.Total,
		Remaining: snapshot.Remaining,
		Phase:     snapshot.Phase,
		Label:     snapshot.Label(),
		Progress:  snapshot.Progress(),
	})
}

func writeTimerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, countdown.ErrInvalidConfiguration):
		WriteError(w, http.StatusBadRequest, "invalid_configuration", err.Error())
	case errors.Is(err, bridge.ErrNotBound):
		WriteError(w, http.StatusServiceUnavailable, "not_ready", err.Error())
	case errors.Is(err, countdown.ErrLockFailure):
		WriteError(w, http.StatusInternalServerError, "lock_failure", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
