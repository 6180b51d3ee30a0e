package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/geo-analytics/internal/auth"
	"github.com/sells-group/geo-analytics/internal/geo"
	"github.com/sells-group/geo-analytics/internal/model"
	"github.com/sells-group/geo-analytics/internal/monitoring"
	"github.com/sells-group/geo-analytics/internal/report"
)

// maxBatchSize bounds POST /analyses/batch.
const maxBatchSize = 1000

type handlers struct {
	auth    *auth.Service
	reports *report.Service
	ready   monitoring.Pinger
}

// coordinateText accepts a JSON number or string and keeps its text so the
// coordinate parser can produce the usual validation messages.
type coordinateText string

func (c *coordinateText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = coordinateText(s)
		return nil
	}
	*c = coordinateText(data)
	return nil
}

type coordinateRequest struct {
	Latitude  coordinateText `json:"latitude"`
	Longitude coordinateText `json:"longitude"`
}

func (c coordinateRequest) parse() (geo.Coordinate, error) {
	return geo.ParseCoordinate(string(c.Latitude), string(c.Longitude))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(v)
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *handlers) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.ready.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *handlers) signUp(w http.ResponseWriter, r *http.Request) {
	var req auth.SignUpRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	u, err := h.auth.SignUp(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *handlers) signIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	sess, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *handlers) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context(), bearerToken(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, id)
}

func (h *handlers) validateCoordinate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := geo.ParseCoordinate(q.Get("lat"), q.Get("lon"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handlers) createAnalysis(w http.ResponseWriter, r *http.Request) {
	var req coordinateRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	c, err := req.parse()
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.reports.Analyze(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *handlers) createBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Coordinates []coordinateRequest `json:"coordinates"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if len(req.Coordinates) == 0 {
		badRequest(w, "coordinates must not be empty")
		return
	}
	if len(req.Coordinates) > maxBatchSize {
		badRequest(w, "at most "+strconv.Itoa(maxBatchSize)+" coordinates per batch")
		return
	}

	// Unparseable text is kept out of the batch and reported at its index.
	coords := make([]geo.Coordinate, 0, len(req.Coordinates))
	positions := make([]int, 0, len(req.Coordinates))
	parseErrs := map[int]error{}
	for i, cr := range req.Coordinates {
		c, err := cr.parse()
		if err != nil {
			parseErrs[i] = err
			continue
		}
		coords = append(coords, c)
		positions = append(positions, i)
	}

	res, err := h.reports.AnalyzeBatch(r.Context(), coords)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]report.BatchItem, len(req.Coordinates))
	for i, err := range parseErrs {
		items[i] = report.BatchItem{Index: i, Error: err.Error()}
	}
	for j, item := range res.Items {
		item.Index = positions[j]
		items[positions[j]] = item
	}
	writeJSON(w, http.StatusCreated, report.BatchResult{
		Items:  items,
		Saved:  res.Saved,
		Failed: res.Failed + len(parseErrs),
	})
}

func (h *handlers) listAnalyses(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		badRequest(w, "limit must be an integer")
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		badRequest(w, "offset must be an integer")
		return
	}
	recs, err := h.reports.History(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []model.AnalysisRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": recs})
}

func (h *handlers) getAnalysis(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
