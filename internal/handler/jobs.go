package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/stgabriel/parishhub/internal/jobs"
)

// JobHandler exposes the two daily batch jobs as HTTP endpoints for an
// external scheduler. Per-item failures are reported inside a 200 body so
// the scheduler sees partial-failure detail without log access; only a hard
// batch failure produces an error status.
type JobHandler struct {
	generator *jobs.Generator
	digest    *jobs.Digest
	logger    *slog.Logger
}

func NewJobHandler(generator *jobs.Generator, digest *jobs.Digest, logger *slog.Logger) *JobHandler {
	return &JobHandler{generator: generator, digest: digest, logger: logger}
}

type generatorResponse struct {
	Success bool `json:"success"`
	*jobs.GeneratorResult
}

type digestResponse struct {
	Success bool `json:"success"`
	*jobs.DigestResult
}

// RunGenerator handles POST /api/jobs/generate-tasks
func (h *JobHandler) RunGenerator(w http.ResponseWriter, r *http.Request) {
	result, err := h.generator.Run(time.Now())
	if err != nil {
		h.logger.Error("generator run", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, generatorResponse{Success: true, GeneratorResult: result})
}

// RunDigest handles POST /api/jobs/send-digests
func (h *JobHandler) RunDigest(w http.ResponseWriter, r *http.Request) {
	result, err := h.digest.Run(time.Now())
	if err != nil {
		h.logger.Error("digest run", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, digestResponse{Success: true, DigestResult: result})
}
