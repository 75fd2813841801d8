package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/weft-dev/weft/internal/core"
	"github.com/weft-dev/weft/internal/events"
	"github.com/weft-dev/weft/internal/flowfile"
	"github.com/weft-dev/weft/internal/service/flow"
)

const maxRunBody = 4 << 20

// handleCreateRun executes a submitted flow document synchronously and
// returns the completed run log. The body is a flow document; JSON bodies
// parse as YAML.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRunBody))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "reading request body")
		return
	}

	parsed, err := flowfile.Parse(body)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	runID := core.RunID(uuid.NewString())
	if s.bus != nil {
		s.bus.Publish(events.NewRunStartedEvent(string(runID), len(parsed.Graph.Nodes)))
	}

	log := s.runner.Run(r.Context(), flow.Request{
		RunID:       runID,
		Graph:       parsed.Graph,
		Inputs:      parsed.Inputs,
		Attachments: parsed.Attachments,
	})
	s.publishRunOutcome(log)

	if s.store != nil {
		if err := s.store.SaveRun(r.Context(), log); err != nil {
			// The caller still gets the log; history just misses this run.
			s.logger.Warn("saving run", "run_id", runID, "error", err)
		}
	}

	s.respondJSON(w, http.StatusOK, log)
}

// publishRunOutcome mirrors the run's final state onto the event bus.
func (s *Server) publishRunOutcome(log *core.RunLog) {
	if s.bus == nil {
		return
	}
	if !log.Failed() {
		s.bus.Publish(events.NewRunCompletedEvent(string(log.ID), len(log.Steps), log.Duration()))
		return
	}
	var nodeID, errText string
	for _, step := range log.Steps {
		if step.Status == core.NodeStatusError {
			nodeID = string(step.NodeID)
			errText = step.Output
			break
		}
	}
	s.bus.Publish(events.NewRunFailedEvent(string(log.ID), nodeID, errText))
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotFound, "no run store configured")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	summaries, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"runs": summaries})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotFound, "no run store configured")
		return
	}

	runID := chi.URLParam(r, "runID")
	log, err := s.store.LoadRun(r.Context(), core.RunID(runID))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, log)
}
