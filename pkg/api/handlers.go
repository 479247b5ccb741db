package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/coalesce/pkg/buildinfo"
	"github.com/matzehuels/coalesce/pkg/errors"
	"github.com/matzehuels/coalesce/pkg/forward"
	coio "github.com/matzehuels/coalesce/pkg/io"
	"github.com/matzehuels/coalesce/pkg/pipeline"
)

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// SimplifyResponse is the body of a successful /v1/simplify call.
type SimplifyResponse struct {
	RunID     string         `json:"run_id"`
	InputHash string         `json:"input_hash"`
	Cached    bool           `json:"cached"`
	Stats     Stats          `json:"stats"`
	Result    *coio.Document `json:"result"`
}

// Stats mirrors pipeline.Stats with JSON names and millisecond timings.
type Stats struct {
	InputNodes   int     `json:"input_nodes"`
	InputEdges   int     `json:"input_edges"`
	Nodes        int     `json:"nodes"`
	Edges        int     `json:"edges"`
	Samples      int     `json:"samples"`
	Coalescences int     `json:"coalescences"`
	SimplifyMS   float64 `json:"simplify_ms"`
}

// SimulateResponse is the body of a successful /v1/simulate call.
type SimulateResponse struct {
	RunID    string         `json:"run_id"`
	Cached   bool           `json:"cached"`
	Stats    forward.Stats  `json:"stats"`
	Document *coio.Document `json:"document"`
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatTOML: "application/toml",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleSimplify(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if !s.decode(w, r, &opts) {
		return
	}
	opts.Formats = []string{pipeline.FormatJSON}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SimplifyResponse{
		RunID:     res.RunID,
		InputHash: res.InputHash,
		Cached:    res.CacheInfo.SimplifyHit,
		Stats: Stats{
			InputNodes:   res.Stats.InputNodes,
			InputEdges:   res.Stats.InputEdges,
			Nodes:        res.Stats.Nodes,
			Edges:        res.Stats.Edges,
			Samples:      res.Stats.Samples,
			Coalescences: res.Stats.Coalescences,
			SimplifyMS:   float64(res.Stats.SimplifyTime.Microseconds()) / 1000,
		},
		Result: res.Output,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}
	var opts pipeline.Options
	if !s.decode(w, r, &opts) {
		return
	}
	opts.Formats = []string{format}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Run-Id", res.RunID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	params := forward.DefaultParameters()
	if !s.decode(w, r, &params) {
		return
	}
	if err := params.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	if work := int64(params.PopulationSize) * params.Steps; work > s.cfg.MaxSimulationWork {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput,
			"population size * steps = %d exceeds the limit of %d", work, s.cfg.MaxSimulationWork))
		return
	}

	res, err := s.runner.Simulate(r.Context(), params, false)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SimulateResponse{
		RunID:    res.RunID,
		Cached:   res.Cached,
		Stats:    res.Stats,
		Document: res.Document,
	})
}

// decode reads a JSON body into v, writing a 400 response on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			err = errors.New(errors.ErrCodeInvalidInput, "request body is empty")
		} else {
			err = errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body")
		}
		s.writeError(w, err)
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := errors.GetCode(err)
	if errors.IsInput(err) {
		status = http.StatusBadRequest
	} else {
		s.logger.Error("request failed", "err", err)
	}
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
