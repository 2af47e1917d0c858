// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/matchreel/matchreel/internal/domain/model"
)

//go:embed contest_schema.json
var contestSchemaJSON []byte

var (
	contestSchemaOnce sync.Once
	contestSchema     *jsonschema.Schema
	contestSchemaErr  error
)

// compiledSchema compiles the embedded submission schema once.
func compiledSchema() (*jsonschema.Schema, error) {
	contestSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("contest_schema.json", bytes.NewReader(contestSchemaJSON)); err != nil {
			contestSchemaErr = err
			return
		}
		contestSchema, contestSchemaErr = compiler.Compile("contest_schema.json")
	})
	return contestSchema, contestSchemaErr
}

// submissionRequest mirrors the POST /contests payload.
type submissionRequest struct {
	SubmissionID string              `json:"submission_id"`
	Contest      model.ContestBundle `json:"contest"`
}

// validate applies the checks the schema cannot express.
func (s submissionRequest) validate() error {
	switch {
	case strings.TrimSpace(s.SubmissionID) == "":
		return errors.New("missing submission_id")
	case strings.TrimSpace(s.Contest.ContestID) == "":
		return errors.New("missing contest.contest_id")
	case s.Contest.StartTime.IsZero():
		return errors.New("missing contest.start_time")
	}
	seen := make(map[int]struct{}, len(s.Contest.Plays))
	for _, p := range s.Contest.Plays {
		if _, dup := seen[p.Sequence]; dup {
			return errors.New("duplicate play sequence in contest.plays")
		}
		seen[p.Sequence] = struct{}{}
	}
	return nil
}

// ContestsHandler handles contest submission requests.
type ContestsHandler struct {
	deps Dependencies
}

// NewContestsHandler creates a new contests handler.
func NewContestsHandler(deps Dependencies) *ContestsHandler {
	return &ContestsHandler{deps: deps}
}

// HandlePostContest handles POST /contests requests.
func (h *ContestsHandler) HandlePostContest(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_contest"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	schema, err := compiledSchema()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "schema_unavailable", WrapKind(op, ErrSchema, err))
		return
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := schema.Validate(payload); err != nil {
		writeError(w, http.StatusBadRequest, "schema_violation", WrapKind(op, ErrSchema, err))
		return
	}

	var req submissionRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.SubmissionID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	// Try to enqueue for async assembly
	if ok := h.deps.Enqueue(r.Context(), req.SubmissionID, req.Contest); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.SubmissionID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
