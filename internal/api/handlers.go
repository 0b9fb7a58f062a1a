package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/research-gate/internal/gate"
	"github.com/sells-group/research-gate/internal/model"
	"github.com/sells-group/research-gate/internal/quality"
	"github.com/sells-group/research-gate/internal/traceability"
)

const evaluationIDHeader = "X-Evaluation-Id"

// requestError carries the HTTP status for a rejected request.
type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }

func badRequest(err error) *requestError {
	return &requestError{status: http.StatusBadRequest, err: err}
}

func (s *Server) quality(w http.ResponseWriter, r *http.Request) {
	report, params, rerr := s.parse(w, r)
	if rerr != nil {
		s.fail(w, r, rerr)
		return
	}
	res := quality.Score(report, params.totalDimensions,
		quality.WithFreshness(params.freshness),
		quality.WithNow(s.now()),
	)
	s.respond(w, r, "quality", res, zap.String("threshold", string(res.Threshold)))
}

func (s *Server) traceability(w http.ResponseWriter, r *http.Request) {
	report, _, rerr := s.parse(w, r)
	if rerr != nil {
		s.fail(w, r, rerr)
		return
	}
	res := traceability.Verify(report, traceability.WithNow(s.now()))
	s.respond(w, r, "traceability", res, zap.String("status", string(res.Status)))
}

func (s *Server) gate(w http.ResponseWriter, r *http.Request) {
	report, params, rerr := s.parse(w, r)
	if rerr != nil {
		s.fail(w, r, rerr)
		return
	}
	v := gate.Evaluate(report, params.totalDimensions,
		gate.WithFreshness(params.freshness),
		gate.WithNow(s.now()),
	)
	s.respond(w, r, "gate", v, zap.String("decision", string(v.Decision)))
}

// respond writes an evaluator result. Verdicts are always 200, whatever they say.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, kind string, body any, verdict zap.Field) {
	id := uuid.NewString()
	w.Header().Set(evaluationIDHeader, id)
	zap.L().Info("api: evaluated report",
		zap.String("evaluation_id", id),
		zap.String("kind", kind),
		zap.String("path", r.URL.Path),
		verdict,
	)
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, rerr *requestError) {
	zap.L().Warn("api: rejected request",
		zap.String("path", r.URL.Path),
		zap.Int("status", rerr.status),
		zap.Error(rerr.err),
	)
	writeJSON(w, rerr.status, errResp{rerr.Error()})
}

type evalParams struct {
	totalDimensions int
	freshness       bool
}

// parse reads the query parameters and decodes the request body into a Report.
func (s *Server) parse(w http.ResponseWriter, r *http.Request) (*model.Report, evalParams, *requestError) {
	params := evalParams{
		totalDimensions: s.eval.TotalDimensions,
		freshness:       s.eval.FreshnessApplicable,
	}

	q := r.URL.Query()
	if raw := q.Get("total_dimensions"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, params, badRequest(eris.Errorf("api: invalid total_dimensions %q", raw))
		}
		params.totalDimensions = n
	}
	if raw := q.Get("freshness"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, params, badRequest(eris.Errorf("api: invalid freshness %q", raw))
		}
		params.freshness = b
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, params, &requestError{
				status: http.StatusRequestEntityTooLarge,
				err:    eris.Errorf("api: request body exceeds %d bytes", tooLarge.Limit),
			}
		}
		return nil, params, badRequest(eris.Wrap(err, "api: read request body"))
	}

	report, err := model.Decode(data, bodyFormat(r))
	if err != nil {
		return nil, params, badRequest(err)
	}
	return report, params, nil
}

// bodyFormat picks the decoder from Content-Type, defaulting to JSON.
func bodyFormat(r *http.Request) model.Format {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return model.FormatJSON
	}
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return model.FormatYAML
	default:
		return model.FormatJSON
	}
}
