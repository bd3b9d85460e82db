package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/agendum/agendum"
	"github.com/agendum/agendum/schedule"
)

// maxBodySize bounds request bodies on the JSON endpoints.
const maxBodySize = 1 << 20

// handleExecute streams one task execution as server-sent events, one
// `data:` frame per ExecutionEvent. The stream ends after the completion
// event; a dropped connection cancels the execution and loses the
// remaining events.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	var req agendum.TaskRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if req.Task == "" {
		writeError(w, http.StatusBadRequest, "task is required")
		return
	}
	if req.AgentName == "" {
		req.AgentName = "Agendum"
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.logger.Info("task execution started", "principal", req.Principal, "agent", req.AgentName)

	for event := range s.runner.ExecuteTask(r.Context(), req) {
		data, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("event marshal failed", "error", err)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}

// scheduleRequest is the create-schedule request body.
type scheduleRequest struct {
	Name      string `json:"name"`
	Task      string `json:"task"`
	AgentName string `json:"agent_name"`
	AgentRole string `json:"agent_role"`
	Principal string `json:"principal"`
	Schedule  struct {
		Kind  string `json:"kind"`
		At    string `json:"at,omitempty"`    // RFC 3339
		Every string `json:"every,omitempty"` // Go duration, e.g. "30m"
		Expr  string `json:"expr,omitempty"`
	} `json:"schedule"`
}

func (s *Server) handleScheduleCreate(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	spec := schedule.Spec{
		Kind: schedule.Kind(req.Schedule.Kind),
		Expr: req.Schedule.Expr,
	}
	if req.Schedule.At != "" {
		at, err := time.Parse(time.RFC3339, req.Schedule.At)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid at timestamp: %v", err))
			return
		}
		spec.At = at
	}
	if req.Schedule.Every != "" {
		every, err := time.ParseDuration(req.Schedule.Every)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid every interval: %v", err))
			return
		}
		spec.Every = every
	}

	task, err := s.schedule.Add(schedule.Task{
		Name:      req.Name,
		Text:      req.Task,
		AgentName: req.AgentName,
		AgentRole: req.AgentRole,
		Principal: req.Principal,
		Spec:      spec,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleScheduleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tasks": s.schedule.List()})
}

func (s *Server) handleScheduleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.schedule.Remove(r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScheduleEnable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	id := r.PathValue("id")
	if err := s.schedule.Enable(id, req.Enabled); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	task, _ := s.schedule.Get(id)
	writeJSON(w, http.StatusOK, task)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
