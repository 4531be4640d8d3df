package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/okian/eta/internal/adapters/mlflow"
	service "github.com/okian/eta/internal/app"
	"github.com/okian/eta/internal/domain/features"
	"github.com/okian/eta/internal/domain/model"
	"github.com/okian/eta/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type stubPredictor struct {
	hours float64
	err   error
}

func (s *stubPredictor) Predict(_ context.Context, rows []features.EngineeredRecord) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]float64, len(rows))
	for i := range out {
		out[i] = s.hours
	}
	return out, nil
}

func newMux(pred *stubPredictor) *http.ServeMux {
	info := types.DefaultModelInfo()
	info.ModelURI = "runs:/0009aa/Final_RF_Model"
	svc := service.New(pred, service.WithModelInfo(info))
	mux := http.NewServeMux()
	Register(context.Background(), mux, NewHandler(svc, nil))
	return mux
}

func validForm() url.Values {
	return url.Values{
		model.ColAgentAge:    {"30"},
		model.ColAgentRating: {"4.5"},
		model.ColDistanceKm:  {"10"},
		model.ColOrderHour:   {"14"},
		model.ColWeather:     {"Fog"},
		model.ColTraffic:     {"Jam"},
		model.ColVehicle:     {"van"},
		model.ColArea:        {"Metropolitan"},
		model.ColCategory:    {"Pet Supplies"},
	}
}

func submit(mux http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestIndex(t *testing.T) {
	Convey("Given the form site", t, func() {
		mux := newMux(&stubPredictor{hours: 26})

		Convey("When loading the page", func() {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			body := w.Body.String()

			Convey("Then the form is rendered with its defaults", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/html; charset=utf-8")
				So(body, ShouldContainSubstring, `name="Agent_Age" min="15" max="60" step="1" value="30"`)
				So(body, ShouldContainSubstring, `name="Order_Hour" min="0" max="23" step="1" value="14"`)
				So(body, ShouldContainSubstring, `value="4.5"`)
				So(body, ShouldContainSubstring, `<option value="Sunny" selected>`)
				So(body, ShouldContainSubstring, `<option value="Pet Supplies">`)
			})

			Convey("And the result panel shows the placeholder", func() {
				So(body, ShouldContainSubstring, Placeholder)
			})

			Convey("And the sidebar shows the model card", func() {
				So(body, ShouldContainSubstring, "RandomForest (HP tuned)")
				So(body, ShouldContainSubstring, "RMSE ≈ <b>22 hrs</b>")
				So(body, ShouldContainSubstring, "R² ≈ <b>0.82</b>")
				So(body, ShouldContainSubstring, "runs:/0009aa/Final_RF_Model")
			})
		})

		Convey("When requesting another path", func() {
			req := httptest.NewRequest(http.MethodGet, "/favicon.ico", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestSubmit(t *testing.T) {
	Convey("Given the form site", t, func() {
		Convey("When submitting an order predicted on time", func() {
			w := submit(newMux(&stubPredictor{hours: 26}), validForm())
			body := w.Body.String()

			Convey("Then the green panel and three suggestions are rendered", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body, ShouldContainSubstring, "background-color: #155724")
				So(body, ShouldContainSubstring, "color: #FBFDFC")
				So(body, ShouldContainSubstring, "26.00 hours (~1 days 2 hours)")
				So(strings.Count(body, "<li>✅"), ShouldEqual, 2)
				So(body, ShouldNotContainSubstring, Placeholder)
			})

			Convey("And the submitted values are kept", func() {
				So(body, ShouldContainSubstring, `<option value="Fog" selected>`)
				So(body, ShouldContainSubstring, `<option value="Pet Supplies" selected>`)
			})
		})

		Convey("When submitting an order predicted late", func() {
			w := submit(newMux(&stubPredictor{hours: 220}), validForm())
			body := w.Body.String()

			Convey("Then the red panel and four suggestions are rendered", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body, ShouldContainSubstring, "background-color: #721c24")
				So(body, ShouldContainSubstring, "Operational changes may be required.")
			})
		})

		Convey("When a field is missing", func() {
			form := validForm()
			form.Del(model.ColVehicle)
			w := submit(newMux(&stubPredictor{hours: 26}), form)

			Convey("Then the message is shown with 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "missing field &#34;Vehicle&#34;")
			})
		})

		Convey("When a field is out of range", func() {
			form := validForm()
			form.Set(model.ColDistanceKm, "5")
			w := submit(newMux(&stubPredictor{hours: 26}), form)

			Convey("Then the message is shown with 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "must be at least 10")
			})
		})

		Convey("When the model fails", func() {
			pred := &stubPredictor{err: &mlflow.StatusError{Code: 500, Body: "model crashed"}}
			w := submit(newMux(pred), validForm())

			Convey("Then the message is shown with 502", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(w.Body.String(), ShouldContainSubstring, "model crashed")
			})
		})

		Convey("When the model is unavailable", func() {
			pred := &stubPredictor{err: fmt.Errorf("%w: %w", mlflow.ErrUnavailable, errors.New("connection refused"))}
			w := submit(newMux(pred), validForm())

			Convey("Then the message is shown with 503", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(w.Body.String(), ShouldContainSubstring, "connection refused")
			})
		})
	})
}

func TestRegisterWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		Convey("Then Register should panic", func() {
			So(func() {
				Register(context.Background(), nil, NewHandler(nil, nil))
			}, ShouldPanic)
		})
	})
}
