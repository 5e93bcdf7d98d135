package domain

import (
	"errors"
	"fmt"
	"math"
)

// FeatureCount is the number of inputs the trained model expects.
const FeatureCount = 12

// FeatureNames lists the model inputs in the order of FeatureVector.Values.
var FeatureNames = [FeatureCount]string{
	"age_of_driver",
	"vehicle_type",
	"age_of_vehicle",
	"engine_cc",
	"day",
	"weather",
	"light",
	"road_surface",
	"gender",
	"speed_limit",
	"latitude",
	"longitude",
}

// Measurements are the free numeric form fields. All must be non-negative.
type Measurements struct {
	AgeOfDriver  float64 `json:"age_of_driver"`
	AgeOfVehicle float64 `json:"age_of_vehicle"`
	EngineCC     float64 `json:"engine_cc"`
	SpeedLimit   float64 `json:"speed_limit"`
}

// Validate enforces the non-negative bounds of the numeric fields.
func (m Measurements) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"age of driver", m.AgeOfDriver},
		{"age of vehicle", m.AgeOfVehicle},
		{"engine cc", m.EngineCC},
		{"speed limit", m.SpeedLimit},
	}
	var errs []error
	for _, f := range fields {
		switch {
		case math.IsNaN(f.value) || math.IsInf(f.value, 0):
			errs = append(errs, fmt.Errorf("%w: %s must be a number", ErrValidation, f.name))
		case f.value < 0:
			errs = append(errs, fmt.Errorf("%w: %s must not be negative", ErrValidation, f.name))
		}
	}
	return errors.Join(errs...)
}

// Selections are the display labels picked in the six choice fields.
type Selections struct {
	VehicleType string `json:"vehicle_type"`
	Day         string `json:"day"`
	Weather     string `json:"weather"`
	Light       string `json:"light"`
	RoadSurface string `json:"road_surface"`
	Gender      string `json:"gender"`
}

// Codes are Selections translated through the registries.
type Codes struct {
	VehicleType int `json:"vehicle_type"`
	Day         int `json:"day"`
	Weather     int `json:"weather"`
	Light       int `json:"light"`
	RoadSurface int `json:"road_surface"`
	Gender      int `json:"gender"`
}

// Translate resolves every selection to its registry code. Unknown labels fail
// with ErrLookup, placeholder entries with ErrPlaceholder. All failing fields
// are reported together.
func (s Selections) Translate() (Codes, error) {
	var (
		c    Codes
		errs []error
	)
	pick := func(r *Registry, label string, dst *int) {
		code, err := r.SelectionOf(label)
		if err != nil {
			errs = append(errs, err)
			return
		}
		*dst = code
	}
	pick(VehicleTypes, s.VehicleType, &c.VehicleType)
	pick(Days, s.Day, &c.Day)
	pick(Weather, s.Weather, &c.Weather)
	pick(Light, s.Light, &c.Light)
	pick(RoadSurfaces, s.RoadSurface, &c.RoadSurface)
	pick(Genders, s.Gender, &c.Gender)

	if len(errs) > 0 {
		return Codes{}, errors.Join(errs...)
	}
	return c, nil
}

// FeatureVector is the fixed-order model input. It is built per submission and
// never stored.
type FeatureVector struct {
	AgeOfDriver  float64
	VehicleType  int
	AgeOfVehicle float64
	EngineCC     float64
	Day          int
	Weather      int
	Light        int
	RoadSurface  int
	Gender       int
	SpeedLimit   float64
	Latitude     float64
	Longitude    float64
}

// NewFeatureVector assembles the model input. A nil location is rejected with
// ErrMissingCoordinates rather than coerced to zero.
func NewFeatureVector(m Measurements, c Codes, loc *Coordinates) (FeatureVector, error) {
	if err := m.Validate(); err != nil {
		return FeatureVector{}, err
	}
	if loc == nil {
		return FeatureVector{}, fmt.Errorf("%w: latitude and longitude are required", ErrMissingCoordinates)
	}
	if err := loc.Validate(); err != nil {
		return FeatureVector{}, err
	}
	return FeatureVector{
		AgeOfDriver:  m.AgeOfDriver,
		VehicleType:  c.VehicleType,
		AgeOfVehicle: m.AgeOfVehicle,
		EngineCC:     m.EngineCC,
		Day:          c.Day,
		Weather:      c.Weather,
		Light:        c.Light,
		RoadSurface:  c.RoadSurface,
		Gender:       c.Gender,
		SpeedLimit:   m.SpeedLimit,
		Latitude:     loc.Lat,
		Longitude:    loc.Lon,
	}, nil
}

// Values returns the vector in model input order (see FeatureNames).
func (v FeatureVector) Values() []float64 {
	return []float64{
		v.AgeOfDriver,
		float64(v.VehicleType),
		v.AgeOfVehicle,
		v.EngineCC,
		float64(v.Day),
		float64(v.Weather),
		float64(v.Light),
		float64(v.RoadSurface),
		float64(v.Gender),
		v.SpeedLimit,
		v.Latitude,
		v.Longitude,
	}
}
