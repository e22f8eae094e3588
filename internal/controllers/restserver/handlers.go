package restserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/chrissnell/pcfseg/internal/constants"
	"github.com/chrissnell/pcfseg/internal/genome"
	"github.com/chrissnell/pcfseg/internal/perarm"
	"github.com/chrissnell/pcfseg/internal/ratiofile"
	"github.com/chrissnell/pcfseg/internal/segment"
	"github.com/chrissnell/pcfseg/internal/smoothing"
	"github.com/chrissnell/pcfseg/internal/stats"
	"github.com/chrissnell/pcfseg/internal/storage"
	"github.com/chrissnell/pcfseg/internal/types"
	"github.com/chrissnell/pcfseg/pkg/responseformat"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, segment.ErrInvalidArgument),
		errors.Is(err, smoothing.ErrInvalidWindow),
		errors.Is(err, stats.ErrEmptyInput),
		errors.Is(err, genome.ErrUnknownBuild):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(w http.ResponseWriter, req *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.controller.logger.Errorf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	if werr := h.formatter.WriteError(w, req, status, err); werr != nil {
		h.controller.logger.Errorf("error writing error response: %v", werr)
	}
}

func (h *Handlers) respond(w http.ResponseWriter, req *http.Request, data any) {
	if err := h.formatter.WriteResponse(w, req, data, nil); err != nil {
		h.controller.logger.Errorf("error writing response: %v", err)
	}
}

// MethodNotAllowed answers requests whose path exists under another method.
func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, req *http.Request) {
	h.fail(w, req, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed on %s", req.Method, req.URL.Path))
}

// NotFound answers requests for unknown paths.
func (h *Handlers) NotFound(w http.ResponseWriter, req *http.Request) {
	h.fail(w, req, http.StatusNotFound, fmt.Errorf("no route for %s", req.URL.Path))
}

// tooLong reports, and answers with 413, a request of more than the
// configured maximum number of points.
func (h *Handlers) tooLong(w http.ResponseWriter, req *http.Request, n int) bool {
	limit := h.controller.restConfig.MaxSeriesLength
	if n <= limit {
		return false
	}
	h.fail(w, req, http.StatusRequestEntityTooLarge, fmt.Errorf("%d points exceed the limit of %d", n, limit))
	return true
}

// PostSegment segments a single series.
func (h *Handlers) PostSegment(w http.ResponseWriter, req *http.Request) {
	var body types.SegmentRequest
	if err := h.formatter.DecodeRequest(req, &body); err != nil {
		h.fail(w, req, http.StatusBadRequest, err)
		return
	}
	if h.tooLong(w, req, len(body.Values)) {
		return
	}

	seg := h.controller.cfg.Segmentation
	digits := seg.MeanDigits
	if body.MeanDigits != nil {
		digits = *body.MeanDigits
	}

	var calc segment.PenaltyCalculator
	if body.Penalty != nil {
		if *body.Penalty < 0 {
			h.fail(w, req, http.StatusBadRequest, fmt.Errorf("%w: negative penalty", segment.ErrInvalidArgument))
			return
		}
		calc = segment.FixedPenalty(*body.Penalty)
	} else {
		gamma := segment.GammaPenaltyCalculator{Gamma: seg.Gamma, Normalise: seg.Normalise}
		if body.Gamma != nil {
			gamma.Gamma = *body.Gamma
		}
		if body.Normalise != nil {
			gamma.Normalise = *body.Normalise
		}
		if gamma.Gamma < 0 {
			h.fail(w, req, http.StatusBadRequest, fmt.Errorf("%w: negative gamma", segment.ErrInvalidArgument))
			return
		}
		calc = gamma
	}

	segmenter, err := segment.NewSegmenter(segment.NewRawData(body.Values), calc)
	if err != nil {
		h.fail(w, req, statusFor(err), err)
		return
	}

	h.respond(w, req, types.SegmentResponse{
		Penalty: segmenter.Penalty(),
		Cost:    segmenter.LeastCostSegmentation().Cost(segmenter.Penalty()),
		Fit:     segmenter.PCFWithDigits(digits),
	})
}

// PostArms segments depth ratios per chromosome arm and stores the run when
// storage is configured.
func (h *Handlers) PostArms(w http.ResponseWriter, req *http.Request) {
	var body types.ArmsRequest
	if err := h.formatter.DecodeRequest(req, &body); err != nil {
		h.fail(w, req, http.StatusBadRequest, err)
		return
	}
	if h.tooLong(w, req, len(body.Points)) {
		return
	}

	cfg := *h.controller.cfg
	if body.Build != "" {
		cfg.Genome.Build = body.Build
	}
	locator, err := cfg.Locator()
	if err != nil {
		h.fail(w, req, statusFor(err), err)
		return
	}

	armCfg := cfg.PerArm()
	if body.Gamma != nil {
		armCfg.Gamma = *body.Gamma
	}
	if body.Normalise != nil {
		armCfg.Normalise = *body.Normalise
	}
	if body.MinArmPoints != nil {
		armCfg.MinArmPoints = *body.MinArmPoints
	}
	windowed := cfg.Segmentation.Windowed
	if body.Windowed != nil {
		windowed = *body.Windowed
	}

	items := make(map[string][]types.DepthRatio)
	for _, p := range body.Points {
		items[p.Chromosome] = append(items[p.Chromosome], p)
	}

	segmenter, err := perarm.NewSegmenter(items, locator, ratiofile.Strategy(windowed), armCfg, h.controller.logger)
	if err != nil {
		h.fail(w, req, statusFor(err), err)
		return
	}

	results, err := segmenter.GetSegmentation(req.Context(), h.controller.exec)
	if err != nil {
		h.fail(w, req, statusFor(err), err)
		return
	}

	arms := make([]genome.ChrArm, 0, len(results))
	for arm := range results {
		arms = append(arms, arm)
	}
	genome.SortArms(arms)

	resp := types.ArmsResponse{
		Build:    cfg.Genome.Build,
		Arms:     make([]types.ArmSummary, len(arms)),
		Segments: ratiofile.Summarise(results),
	}
	for i, arm := range arms {
		r := results[arm]
		resp.Arms[i] = types.ArmSummary{
			Chromosome: arm.Chromosome,
			Arm:        arm.Arm.String(),
			Points:     len(r.Items),
			Penalty:    r.Penalty,
			Segments:   r.Fit.Len(),
		}
	}

	if h.controller.store != nil {
		run := storage.NewRun(cfg.Genome.Build, armCfg.Gamma, armCfg.Normalise, armCfg.MinArmPoints, windowed, resp.Segments)
		if err := h.controller.store.SaveRun(req.Context(), run); err != nil {
			h.fail(w, req, http.StatusInternalServerError, fmt.Errorf("storing run: %w", err))
			return
		}
		resp.RunID = run.ID
		h.controller.logger.Infof("stored run %s: %d arms, %d segments", run.ID, len(resp.Arms), len(resp.Segments))
	}

	h.respond(w, req, resp)
}

// GetRun returns a stored run.
func (h *Handlers) GetRun(w http.ResponseWriter, req *http.Request) {
	if h.controller.store == nil {
		h.fail(w, req, http.StatusNotFound, errors.New("run storage is not configured"))
		return
	}

	id := mux.Vars(req)["id"]
	if !storage.ValidID(id) {
		h.fail(w, req, http.StatusBadRequest, fmt.Errorf("invalid run id %q", id))
		return
	}

	run, err := h.controller.store.GetRun(req.Context(), id)
	if err != nil {
		h.fail(w, req, statusFor(err), err)
		return
	}
	h.respond(w, req, run)
}

// GetStatus reports the server version and configuration.
func (h *Handlers) GetStatus(w http.ResponseWriter, req *http.Request) {
	kind, _ := perarm.ParseExecutorKind(h.controller.cfg.Workers.Executor)
	status := types.StatusResponse{
		Status:   "ok",
		Version:  constants.Version,
		Build:    h.controller.cfg.Genome.Build,
		Storage:  h.controller.store != nil,
		Executor: string(kind),
	}
	if pool, ok := h.controller.exec.(*perarm.PoolExecutor); ok {
		status.BusyWorkers = pool.Running()
	}
	h.respond(w, req, status)
}
