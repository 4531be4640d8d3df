package model_test

import (
	"errors"
	"net/url"
	"testing"

	model "github.com/okian/eta/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func validFields() map[string]string {
	return map[string]string{
		model.ColAgentAge:    "30",
		model.ColAgentRating: "4.5",
		model.ColDistanceKm:  "12.5",
		model.ColOrderHour:   "18",
		model.ColWeather:     "Fog",
		model.ColTraffic:     "Jam",
		model.ColVehicle:     "van",
		model.ColArea:        "Metropolitan",
		model.ColCategory:    "Pet Supplies",
	}
}

func TestParse(t *testing.T) {
	convey.Convey("Given a complete set of string fields", t, func() {
		fields := validFields()

		convey.Convey("When parsing them as a map", func() {
			rec, err := model.ParseMap(fields)

			convey.Convey("Then every field should be typed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.AgentAge, convey.ShouldEqual, 30)
				convey.So(rec.AgentRating, convey.ShouldEqual, 4.5)
				convey.So(rec.DistanceKm, convey.ShouldEqual, 12.5)
				convey.So(rec.OrderHour, convey.ShouldEqual, 18)
				convey.So(rec.Weather, convey.ShouldEqual, model.WeatherFog)
				convey.So(rec.Traffic, convey.ShouldEqual, model.TrafficJam)
				convey.So(rec.Vehicle, convey.ShouldEqual, model.VehicleVan)
				convey.So(rec.Area, convey.ShouldEqual, model.AreaMetropolitan)
				convey.So(rec.Category, convey.ShouldEqual, model.CategoryPetSupplies)
			})
		})

		convey.Convey("When parsing them as form values", func() {
			values := url.Values{}
			for k, v := range fields {
				values.Set(k, v)
			}
			rec, err := model.ParseForm(values)

			convey.Convey("Then the result should match the map parse", func() {
				fromMap, mapErr := model.ParseMap(fields)
				convey.So(err, convey.ShouldBeNil)
				convey.So(mapErr, convey.ShouldBeNil)
				convey.So(rec, convey.ShouldResemble, fromMap)
			})
		})

		convey.Convey("When a field is absent", func() {
			delete(fields, model.ColArea)
			_, err := model.ParseMap(fields)

			convey.Convey("Then a MissingFieldError names it", func() {
				var missing *model.MissingFieldError
				convey.So(errors.As(err, &missing), convey.ShouldBeTrue)
				convey.So(missing.Field, convey.ShouldEqual, model.ColArea)
				convey.So(errors.Is(err, model.ErrMissingField), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a field is blank", func() {
			fields[model.ColWeather] = "   "
			_, err := model.ParseMap(fields)

			convey.Convey("Then it counts as missing", func() {
				var missing *model.MissingFieldError
				convey.So(errors.As(err, &missing), convey.ShouldBeTrue)
				convey.So(missing.Field, convey.ShouldEqual, model.ColWeather)
			})
		})

		convey.Convey("When several fields are absent", func() {
			delete(fields, model.ColCategory)
			delete(fields, model.ColOrderHour)
			_, err := model.ParseMap(fields)

			convey.Convey("Then the first one in column order is reported", func() {
				var missing *model.MissingFieldError
				convey.So(errors.As(err, &missing), convey.ShouldBeTrue)
				convey.So(missing.Field, convey.ShouldEqual, model.ColOrderHour)
			})
		})

		convey.Convey("When a numeric field is malformed", func() {
			fields[model.ColAgentAge] = "thirty"
			_, err := model.ParseMap(fields)

			convey.Convey("Then an InvalidFieldError is returned", func() {
				var invalid *model.InvalidFieldError
				convey.So(errors.As(err, &invalid), convey.ShouldBeTrue)
				convey.So(invalid.Field, convey.ShouldEqual, model.ColAgentAge)
				convey.So(errors.Is(err, model.ErrInvalidField), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an integer field is written as an integral decimal", func() {
			fields[model.ColAgentAge] = "30.0"
			fields[model.ColOrderHour] = "1e1"
			rec, err := model.ParseMap(fields)

			convey.Convey("Then it is accepted as that integer", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.AgentAge, convey.ShouldEqual, 30)
				convey.So(rec.OrderHour, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When an integer field has a fractional part", func() {
			for _, v := range []string{"30.5", "NaN", "Inf", "1e30"} {
				fields[model.ColAgentAge] = v
				_, err := model.ParseMap(fields)

				var invalid *model.InvalidFieldError
				convey.So(errors.As(err, &invalid), convey.ShouldBeTrue)
				convey.So(invalid.Field, convey.ShouldEqual, model.ColAgentAge)
				convey.So(invalid.Reason, convey.ShouldEqual, "not an integer")
			}
		})

		convey.Convey("When a value is out of range", func() {
			fields[model.ColOrderHour] = "42"
			rec, err := model.ParseMap(fields)

			convey.Convey("Then parsing still succeeds", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rec.OrderHour, convey.ShouldEqual, 42)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given the default order", t, func() {
		rec := model.DefaultOrder()

		convey.Convey("Then it should be valid", func() {
			convey.So(model.Validate(rec), convey.ShouldBeNil)
		})

		convey.Convey("When every enum combination is used", func() {
			convey.Convey("Then all of them should be valid", func() {
				for _, w := range model.Weathers {
					for _, tr := range model.Traffics {
						for _, v := range model.Vehicles {
							for _, a := range model.Areas {
								r := rec
								r.Weather, r.Traffic, r.Vehicle, r.Area = w, tr, v, a
								convey.So(model.Validate(r), convey.ShouldBeNil)
							}
						}
					}
				}
				for _, c := range model.Categories {
					r := rec
					r.Category = c
					convey.So(model.Validate(r), convey.ShouldBeNil)
				}
			})
		})

		convey.Convey("When the bounds are hit exactly", func() {
			low, high := rec, rec
			low.AgentAge, low.AgentRating, low.DistanceKm, low.OrderHour = model.MinAgentAge, model.MinAgentRating, model.MinDistanceKm, model.MinOrderHour
			high.AgentAge, high.AgentRating, high.DistanceKm, high.OrderHour = model.MaxAgentAge, model.MaxAgentRating, model.MaxDistanceKm, model.MaxOrderHour

			convey.Convey("Then both ends are accepted", func() {
				convey.So(model.Validate(low), convey.ShouldBeNil)
				convey.So(model.Validate(high), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the agent age is below range", func() {
			rec.AgentAge = 14
			err := model.Validate(rec)

			convey.Convey("Then the column name is reported", func() {
				var invalid *model.InvalidFieldError
				convey.So(errors.As(err, &invalid), convey.ShouldBeTrue)
				convey.So(invalid.Field, convey.ShouldEqual, model.ColAgentAge)
				convey.So(invalid.Reason, convey.ShouldEqual, "must be at least 15")
			})
		})

		convey.Convey("When the distance is above range", func() {
			rec.DistanceKm = 7000.5
			err := model.Validate(rec)

			convey.Convey("Then it is rejected", func() {
				var invalid *model.InvalidFieldError
				convey.So(errors.As(err, &invalid), convey.ShouldBeTrue)
				convey.So(invalid.Field, convey.ShouldEqual, model.ColDistanceKm)
			})
		})

		convey.Convey("When an enum value is unknown", func() {
			rec.Vehicle = "bicycle"
			err := model.Validate(rec)

			convey.Convey("Then it is rejected", func() {
				var invalid *model.InvalidFieldError
				convey.So(errors.As(err, &invalid), convey.ShouldBeTrue)
				convey.So(invalid.Field, convey.ShouldEqual, model.ColVehicle)
				convey.So(invalid.Value, convey.ShouldEqual, "bicycle")
			})
		})

		convey.Convey("When an enum value is empty", func() {
			rec.Category = ""
			err := model.Validate(rec)

			convey.Convey("Then it is reported as missing", func() {
				var missing *model.MissingFieldError
				convey.So(errors.As(err, &missing), convey.ShouldBeTrue)
				convey.So(missing.Field, convey.ShouldEqual, model.ColCategory)
			})
		})
	})
}
