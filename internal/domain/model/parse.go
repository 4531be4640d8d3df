package model

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Lookup returns the raw string for a model column and whether it was supplied.
type Lookup func(key string) (string, bool)

// ParseForm builds a record from submitted form values keyed by model column names.
func ParseForm(values url.Values) (RawOrderRecord, error) {
	return Parse(func(key string) (string, bool) {
		if _, ok := values[key]; !ok {
			return "", false
		}
		return values.Get(key), true
	})
}

// ParseMap builds a record from a flat string map keyed by model column names.
func ParseMap(fields map[string]string) (RawOrderRecord, error) {
	return Parse(func(key string) (string, bool) {
		v, ok := fields[key]
		return v, ok
	})
}

// Parse builds a record from lookup. Fields are read in column order and the
// first absent or blank one yields a *MissingFieldError. Numeric fields that
// do not parse yield an *InvalidFieldError. Domain bounds are not checked
// here; see Validate.
func Parse(lookup Lookup) (RawOrderRecord, error) {
	var rec RawOrderRecord
	p := parser{lookup: lookup}

	rec.AgentAge = p.integer(ColAgentAge)
	rec.AgentRating = p.number(ColAgentRating)
	rec.DistanceKm = p.number(ColDistanceKm)
	rec.OrderHour = p.integer(ColOrderHour)
	rec.Weather = Weather(p.str(ColWeather))
	rec.Traffic = Traffic(p.str(ColTraffic))
	rec.Vehicle = Vehicle(p.str(ColVehicle))
	rec.Area = Area(p.str(ColArea))
	rec.Category = Category(p.str(ColCategory))

	if p.err != nil {
		return RawOrderRecord{}, p.err
	}
	return rec, nil
}

// parser keeps the first error and turns later reads into no-ops.
type parser struct {
	lookup Lookup
	err    error
}

func (p *parser) str(key string) string {
	if p.err != nil {
		return ""
	}
	v, ok := p.lookup(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		p.err = &MissingFieldError{Field: key}
		return ""
	}
	return v
}

func (p *parser) integer(key string) int {
	s := p.str(key)
	if p.err != nil {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	// JSON clients may send 30.0 or 1e1 for an integer.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt || f >= -math.MinInt {
		p.err = &InvalidFieldError{Field: key, Value: s, Reason: "not an integer"}
		return 0
	}
	return int(f)
}

func (p *parser) number(key string) float64 {
	s := p.str(key)
	if p.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = &InvalidFieldError{Field: key, Value: s, Reason: "not a number"}
		return 0
	}
	return f
}
