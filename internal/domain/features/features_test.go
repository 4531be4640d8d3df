package features_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/eta/internal/domain/features"
	"github.com/okian/eta/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleOrder() model.RawOrderRecord {
	return model.RawOrderRecord{
		AgentAge:    27,
		AgentRating: 4.7,
		DistanceKm:  42.0,
		OrderHour:   9,
		Weather:     model.WeatherStormy,
		Traffic:     model.TrafficHigh,
		Vehicle:     model.VehicleScooter,
		Area:        model.AreaSemiUrban,
		Category:    model.CategoryBooks,
	}
}

func TestDerive(t *testing.T) {
	Convey("Given a raw order", t, func() {
		raw := sampleOrder()

		Convey("When deriving features", func() {
			rec, err := features.Derive(raw)

			Convey("Then the raw fields are preserved unchanged", func() {
				So(err, ShouldBeNil)
				So(rec.RawOrderRecord, ShouldResemble, raw)
			})

			Convey("And the interaction keys are underscore joined", func() {
				So(rec.TrafficArea, ShouldEqual, "High_Semi-Urban")
				So(rec.AreaVehicle, ShouldEqual, "Semi-Urban_scooter")
				So(rec.WeatherArea, ShouldEqual, "Stormy_Semi-Urban")
			})

			Convey("And the flags are off for an off-peak semi-urban order", func() {
				So(rec.IsPeakHours, ShouldEqual, 0)
				So(rec.IsUrban, ShouldEqual, 0)
			})
		})

		Convey("When deriving twice", func() {
			first, err1 := features.Derive(raw)
			second, err2 := features.Derive(raw)

			Convey("Then both results are identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first, ShouldResemble, second)
			})
		})

		Convey("When a categorical field is empty", func() {
			raw.Traffic = ""
			_, err := features.Derive(raw)

			Convey("Then a MissingFieldError is returned", func() {
				var missing *model.MissingFieldError
				So(errors.As(err, &missing), ShouldBeTrue)
				So(missing.Field, ShouldEqual, model.ColTraffic)
			})
		})

		Convey("When numeric fields are outside the form ranges", func() {
			raw.AgentAge = 99
			raw.DistanceKm = 1
			_, err := features.Derive(raw)

			Convey("Then derivation does not validate them", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestPeakHours(t *testing.T) {
	Convey("Given every hour of the day", t, func() {
		raw := sampleOrder()

		Convey("Then only 17 through 23 are peak", func() {
			for h := 0; h <= 23; h++ {
				raw.OrderHour = h
				rec, err := features.Derive(raw)
				So(err, ShouldBeNil)
				if h >= 17 {
					So(rec.IsPeakHours, ShouldEqual, 1)
				} else {
					So(rec.IsPeakHours, ShouldEqual, 0)
				}
			}
		})
	})
}

func TestUrban(t *testing.T) {
	Convey("Given each area", t, func() {
		raw := sampleOrder()
		want := map[model.Area]int{
			model.AreaUrban:        1,
			model.AreaMetropolitan: 1,
			model.AreaSemiUrban:    0,
			model.AreaOther:        0,
		}

		Convey("Then only Urban and Metropolitan are urban", func() {
			for _, a := range model.Areas {
				raw.Area = a
				rec, err := features.Derive(raw)
				So(err, ShouldBeNil)
				So(rec.IsUrban, ShouldEqual, want[a])
			}
		})
	})
}

func TestInteractionKeysForAllCombinations(t *testing.T) {
	Convey("Given every weather, traffic, vehicle and area", t, func() {
		raw := sampleOrder()

		Convey("Then each key is the two sources joined by an underscore", func() {
			for _, w := range model.Weathers {
				for _, tr := range model.Traffics {
					for _, v := range model.Vehicles {
						for _, a := range model.Areas {
							raw.Weather, raw.Traffic, raw.Vehicle, raw.Area = w, tr, v, a
							rec, err := features.Derive(raw)
							So(err, ShouldBeNil)
							So(rec.TrafficArea, ShouldEqual, string(tr)+"_"+string(a))
							So(rec.AreaVehicle, ShouldEqual, string(a)+"_"+string(v))
							So(rec.WeatherArea, ShouldEqual, string(w)+"_"+string(a))
						}
					}
				}
			}
		})
	})
}

func TestSchema(t *testing.T) {
	Convey("Given an engineered record", t, func() {
		raw := sampleOrder()
		raw.OrderHour = 20
		raw.Area = model.AreaUrban
		rec, err := features.Derive(raw)
		So(err, ShouldBeNil)

		Convey("Then Columns lists the nine raw and five derived names", func() {
			cols := features.Columns()
			So(cols, ShouldResemble, []string{
				"Agent_Age", "Agent_Rating", "Distance_km", "Order_Hour",
				"Weather", "Traffic", "Vehicle", "Area", "Category",
				"Traffic_Area", "Area_Vehicle", "Weather_Area", "Is_Peak_Hours", "Is_Urban",
			})
		})

		Convey("And Columns returns a copy", func() {
			cols := features.Columns()
			cols[0] = "mutated"
			So(features.Columns()[0], ShouldEqual, "Agent_Age")
		})

		Convey("And Row lines up with Columns", func() {
			row := rec.Row()
			So(len(row), ShouldEqual, len(features.Columns()))
			So(row[0], ShouldEqual, 27)
			So(row[1], ShouldEqual, 4.7)
			So(row[4], ShouldEqual, "Stormy")
			So(row[9], ShouldEqual, "High_Urban")
			So(row[12], ShouldEqual, 1)
			So(row[13], ShouldEqual, 1)
		})

		Convey("And JSON uses the model column names only", func() {
			b, err := json.Marshal(rec)
			So(err, ShouldBeNil)
			var m map[string]any
			So(json.Unmarshal(b, &m), ShouldBeNil)
			So(len(m), ShouldEqual, 14)
			for _, c := range features.Columns() {
				So(m, ShouldContainKey, c)
			}
		})
	})
}

func TestDeriveBatch(t *testing.T) {
	Convey("Given several raw orders", t, func() {
		a := sampleOrder()
		b := sampleOrder()
		b.Area = model.AreaMetropolitan
		b.OrderHour = 17

		Convey("When deriving the batch", func() {
			out, err := features.DeriveBatch([]model.RawOrderRecord{a, b})

			Convey("Then rows are derived independently and in order", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, 2)
				So(out[0].IsUrban, ShouldEqual, 0)
				So(out[1].IsUrban, ShouldEqual, 1)
				So(out[1].IsPeakHours, ShouldEqual, 1)
			})
		})

		Convey("When one row is incomplete", func() {
			b.Category = ""
			out, err := features.DeriveBatch([]model.RawOrderRecord{a, b})

			Convey("Then the batch fails", func() {
				So(out, ShouldBeNil)
				So(errors.Is(err, model.ErrMissingField), ShouldBeTrue)
			})
		})

		Convey("When the batch is empty", func() {
			out, err := features.DeriveBatch(nil)

			Convey("Then an empty result is returned", func() {
				So(err, ShouldBeNil)
				So(out, ShouldBeEmpty)
			})
		})
	})
}
