// Package features recreates the feature engineering applied at training
// time so that a raw order can be scored by the model.
package features

import (
	"github.com/okian/eta/internal/domain/model"
)

// Derived column names.
const (
	ColTrafficArea = "Traffic_Area"
	ColAreaVehicle = "Area_Vehicle"
	ColWeatherArea = "Weather_Area"
	ColIsPeakHours = "Is_Peak_Hours"
	ColIsUrban     = "Is_Urban"
)

// Peak hours are the closed interval [peakStart, peakEnd].
const (
	peakStart = 17
	peakEnd   = 23
)

// columns is the full model input schema: raw fields then derived fields.
var columns = []string{ //nolint:gochecknoglobals // fixed schema
	model.ColAgentAge,
	model.ColAgentRating,
	model.ColDistanceKm,
	model.ColOrderHour,
	model.ColWeather,
	model.ColTraffic,
	model.ColVehicle,
	model.ColArea,
	model.ColCategory,
	ColTrafficArea,
	ColAreaVehicle,
	ColWeatherArea,
	ColIsPeakHours,
	ColIsUrban,
}

// EngineeredRecord is a raw order plus the five derived features.
type EngineeredRecord struct {
	model.RawOrderRecord

	TrafficArea string `json:"Traffic_Area"`
	AreaVehicle string `json:"Area_Vehicle"`
	WeatherArea string `json:"Weather_Area"`
	IsPeakHours int    `json:"Is_Peak_Hours"`
	IsUrban     int    `json:"Is_Urban"`
}

// Columns returns the model column names in row order.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// Row returns the record's values in Columns order.
func (r EngineeredRecord) Row() []any {
	return []any{
		r.AgentAge,
		r.AgentRating,
		r.DistanceKm,
		r.OrderHour,
		r.Weather.String(),
		r.Traffic.String(),
		r.Vehicle.String(),
		r.Area.String(),
		r.Category.String(),
		r.TrafficArea,
		r.AreaVehicle,
		r.WeatherArea,
		r.IsPeakHours,
		r.IsUrban,
	}
}

// Derive builds the engineered record for one order. It does not check
// ranges; an empty categorical field is reported as *model.MissingFieldError.
func Derive(raw model.RawOrderRecord) (EngineeredRecord, error) {
	if err := requirePresent(raw); err != nil {
		return EngineeredRecord{}, err
	}
	return EngineeredRecord{
		RawOrderRecord: raw,
		TrafficArea:    join(raw.Traffic, raw.Area),
		AreaVehicle:    join(raw.Area, raw.Vehicle),
		WeatherArea:    join(raw.Weather, raw.Area),
		IsPeakHours:    flag(raw.OrderHour >= peakStart && raw.OrderHour <= peakEnd),
		IsUrban:        flag(raw.Area == model.AreaUrban || raw.Area == model.AreaMetropolitan),
	}, nil
}

// DeriveBatch derives every row independently, preserving order. The first
// failing row aborts the batch.
func DeriveBatch(raws []model.RawOrderRecord) ([]EngineeredRecord, error) {
	out := make([]EngineeredRecord, 0, len(raws))
	for _, raw := range raws {
		rec, err := Derive(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func requirePresent(raw model.RawOrderRecord) error {
	for _, f := range []struct {
		col string
		val string
	}{
		{model.ColWeather, raw.Weather.String()},
		{model.ColTraffic, raw.Traffic.String()},
		{model.ColVehicle, raw.Vehicle.String()},
		{model.ColArea, raw.Area.String()},
		{model.ColCategory, raw.Category.String()},
	} {
		if f.val == "" {
			return &model.MissingFieldError{Field: f.col}
		}
	}
	return nil
}

func join(a, b interface{ String() string }) string {
	return a.String() + "_" + b.String()
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
