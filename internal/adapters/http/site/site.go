// Package site serves the delivery time form.
package site

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/eta/internal/adapters/http/api"
	service "github.com/okian/eta/internal/app"
	"github.com/okian/eta/internal/domain/model"
	"github.com/okian/eta/internal/domain/types"
	"github.com/okian/eta/pkg/logger"
)

// Placeholder is shown in the result panel before the first submission.
const Placeholder = "Prediction will appear here once you submit the form."

// ErrRender is returned when the page template fails.
var ErrRender = errors.New("site render failed")

// Dependencies required by the form handlers.
type Dependencies interface {
	Predict(ctx context.Context, order model.RawOrderRecord) (service.Prediction, error)
	ModelInfo() types.ModelInfo
}

// Handler renders the form page and its result panel.
type Handler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewHandler creates a form handler. A nil logger discards output.
func NewHandler(deps Dependencies, l logger.Logger) *Handler {
	if l == nil {
		l = logger.Nop()
	}
	return &Handler{deps: deps, logger: l}
}

// Register attaches the form routes to mux.
func Register(_ context.Context, mux *http.ServeMux, h *Handler) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /{$}", api.MetricsMiddleware(h.HandleIndex, "site"))
	mux.HandleFunc("POST /{$}", api.MetricsMiddleware(h.HandleSubmit, "site_submit"))
}

type numberField struct {
	Name, Label, Min, Max, Step, Value string
}

type selectField struct {
	Name, Label string
	Options     []string
	Selected    string
	Wide        bool
}

type resultView struct {
	Background  string
	Text        string
	Summary     string
	Suggestions []string
}

type page struct {
	Info        types.ModelInfo
	Numbers     []numberField
	Selects     []selectField
	Result      *resultView
	Error       string
	Placeholder string
}

// HandleIndex handles GET / and renders the form with its defaults.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.newPage(defaultValues()))
}

// HandleSubmit handles POST /: parse, predict and render the result panel
// next to the submitted values.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		p := h.newPage(defaultValues())
		p.Error = err.Error()
		h.render(w, r, http.StatusBadRequest, p)
		return
	}

	p := h.newPage(submittedValues(r.PostForm))
	order, err := model.ParseForm(r.PostForm)
	if err == nil {
		var pred service.Prediction
		pred, err = h.deps.Predict(r.Context(), order)
		if err == nil {
			p.Result = &resultView{
				Background:  pred.Result.Scheme.Background,
				Text:        pred.Result.Scheme.Text,
				Summary:     pred.Result.Summary(),
				Suggestions: pred.Result.Suggestions,
			}
			h.render(w, r, http.StatusOK, p)
			return
		}
	}

	status, _ := api.StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "form prediction failed", logger.Error(err), logger.Int("status", status))
	}
	p.Error = err.Error()
	h.render(w, r, status, p)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, p page) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, p); err != nil {
		h.logger.Error(r.Context(), "failed to render page", logger.Error(errors.Join(ErrRender, err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) newPage(values map[string]string) page {
	return page{
		Info: h.deps.ModelInfo(),
		Numbers: []numberField{
			{model.ColAgentAge, "Agent Age", itoa(model.MinAgentAge), itoa(model.MaxAgentAge), "1", values[model.ColAgentAge]},
			{model.ColOrderHour, "Order Hour", itoa(model.MinOrderHour), itoa(model.MaxOrderHour), "1", values[model.ColOrderHour]},
			{model.ColAgentRating, "Agent Rating", ftoa(model.MinAgentRating), ftoa(model.MaxAgentRating), "0.1", values[model.ColAgentRating]},
			{model.ColDistanceKm, "Distance (km)", ftoa(model.MinDistanceKm), ftoa(model.MaxDistanceKm), "any", values[model.ColDistanceKm]},
		},
		Selects: []selectField{
			{Name: model.ColWeather, Label: "Weather", Options: stringsOf(model.Weathers), Selected: values[model.ColWeather]},
			{Name: model.ColTraffic, Label: "Traffic", Options: stringsOf(model.Traffics), Selected: values[model.ColTraffic]},
			{Name: model.ColVehicle, Label: "Vehicle", Options: stringsOf(model.Vehicles), Selected: values[model.ColVehicle]},
			{Name: model.ColArea, Label: "Area", Options: stringsOf(model.Areas), Selected: values[model.ColArea]},
			{Name: model.ColCategory, Label: "Product Category", Options: stringsOf(model.Categories), Selected: values[model.ColCategory], Wide: true},
		},
		Placeholder: Placeholder,
	}
}

func defaultValues() map[string]string {
	d := model.DefaultOrder()
	return map[string]string{
		model.ColAgentAge:    itoa(d.AgentAge),
		model.ColAgentRating: ftoa(d.AgentRating),
		model.ColDistanceKm:  ftoa(d.DistanceKm),
		model.ColOrderHour:   itoa(d.OrderHour),
		model.ColWeather:     d.Weather.String(),
		model.ColTraffic:     d.Traffic.String(),
		model.ColVehicle:     d.Vehicle.String(),
		model.ColArea:        d.Area.String(),
		model.ColCategory:    d.Category.String(),
	}
}

// submittedValues echoes the posted fields, leaving absent ones blank.
func submittedValues(form url.Values) map[string]string {
	out := make(map[string]string, len(form))
	for k := range form {
		out[k] = form.Get(k)
	}
	return out
}

func stringsOf[T ~string](vals []T) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
