package domain

import (
	"fmt"
	"sort"
)

// PlaceholderCode is the code of every registry's "Select ..." entry.
const PlaceholderCode = 0

// Entry is one code/label pair of a Registry.
type Entry struct {
	Code  int    `json:"code"`
	Label string `json:"label"`
}

// Registry is a fixed, bidirectional code <-> label table backing one choice
// field of the form. Entries are kept in ascending code order.
type Registry struct {
	name    string
	field   string
	entries []Entry
	byCode  map[int]string
	byLabel map[string]int
}

// NewRegistry builds a registry from entries. It panics on duplicate codes or
// labels since registries are static tables defined at compile time.
func NewRegistry(name, field string, entries ...Entry) *Registry {
	r := &Registry{
		name:    name,
		field:   field,
		entries: make([]Entry, len(entries)),
		byCode:  make(map[int]string, len(entries)),
		byLabel: make(map[string]int, len(entries)),
	}
	copy(r.entries, entries)
	sort.SliceStable(r.entries, func(i, j int) bool { return r.entries[i].Code < r.entries[j].Code })

	for _, e := range r.entries {
		if _, dup := r.byCode[e.Code]; dup {
			panic(fmt.Sprintf("registry %s: duplicate code %d", name, e.Code))
		}
		if _, dup := r.byLabel[e.Label]; dup {
			panic(fmt.Sprintf("registry %s: duplicate label %q", name, e.Label))
		}
		r.byCode[e.Code] = e.Label
		r.byLabel[e.Label] = e.Code
	}
	return r
}

// Name is the machine name of the registry, e.g. "vehicle_type".
func (r *Registry) Name() string { return r.name }

// Field is the human-readable form field the registry populates, e.g. "Vehicle Type".
func (r *Registry) Field() string { return r.field }

// Entries returns a copy of the entries in code order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Labels returns the display strings in code order, placeholder first.
func (r *Registry) Labels() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Label
	}
	return out
}

// Label returns the display string for code.
func (r *Registry) Label(code int) (string, bool) {
	l, ok := r.byCode[code]
	return l, ok
}

// CodeOf returns the code for a display string. Unknown labels are an
// ErrLookup; there is no default.
func (r *Registry) CodeOf(label string) (int, error) {
	code, ok := r.byLabel[label]
	if !ok {
		return 0, fmt.Errorf("%w: %s has no option %q", ErrLookup, r.field, label)
	}
	return code, nil
}

// SelectionOf resolves a submitted label to a code that may be sent to the
// model. The placeholder entry is rejected with ErrPlaceholder.
func (r *Registry) SelectionOf(label string) (int, error) {
	code, err := r.CodeOf(label)
	if err != nil {
		return 0, err
	}
	if code == PlaceholderCode {
		return 0, fmt.Errorf("%w: choose a value for %s", ErrPlaceholder, r.field)
	}
	return code, nil
}

// Placeholder returns the label of the placeholder entry.
func (r *Registry) Placeholder() string {
	return r.byCode[PlaceholderCode]
}

// Coded registries used by the accident form. Codes follow the STATS19
// road-safety data guide that the model was trained on.
var (
	VehicleTypes = NewRegistry("vehicle_type", "Vehicle Type",
		Entry{0, "Select your Vehicle Type"},
		Entry{1, "Pedal cycle"},
		Entry{2, "Motorcycle 50cc and under"},
		Entry{3, "Motorcycle 125cc and under"},
		Entry{4, "Motorcycle over 125cc and up to 500cc"},
		Entry{5, "Motorcycle over 500cc"},
		Entry{8, "Taxi/Private hire car"},
		Entry{9, "Car"},
		Entry{10, "Minibus (8 - 16 passenger seats)"},
		Entry{11, "Bus or coach (17 or more pass seats)"},
		Entry{16, "Ridden horse"},
		Entry{17, "Agricultural vehicle"},
		Entry{18, "Tram"},
		Entry{19, "Van/Goods 3.5 tonnes mgw or under"},
		Entry{20, "Goods over 3.5t. and under 7.5t"},
		Entry{21, "Goods 7.5 tonnes mgw and over"},
		Entry{22, "Mobility scooter"},
		Entry{23, "Electric motorcycle"},
		Entry{90, "Other vehicle"},
		Entry{97, "Motorcycle - unknown cc"},
		Entry{98, "Goods vehicle-unknown weight"},
	)

	Days = NewRegistry("day", "Day",
		Entry{0, "Select day"},
		Entry{1, "Sunday"},
		Entry{2, "Monday"},
		Entry{3, "Tuesday"},
		Entry{4, "Wednesday"},
		Entry{5, "Thursday"},
		Entry{6, "Friday"},
		Entry{7, "Saturday"},
	)

	Weather = NewRegistry("weather", "Weather",
		Entry{0, "Choose weather condition"},
		Entry{1, "Fine no high winds"},
		Entry{2, "Raining no high winds"},
		Entry{3, "Snowing no high winds"},
		Entry{4, "Fine + high winds"},
		Entry{5, "Raining + high winds"},
		Entry{6, "Snowing + high winds"},
		Entry{7, "Fog or mist"},
		Entry{8, "Other"},
	)

	Light = NewRegistry("light", "Light",
		Entry{0, "Choose lighting condition"},
		Entry{1, "Daylight"},
		Entry{4, "Darkness - lights lit"},
		Entry{5, "Darkness - lights unlit"},
		Entry{6, "Darkness - no lighting"},
		Entry{7, "Darkness - lighting unknown"},
	)

	RoadSurfaces = NewRegistry("road_surface", "Road Conditions",
		Entry{0, "Select Road Surface"},
		Entry{1, "Dry"},
		Entry{2, "Wet or damp"},
		Entry{3, "Snow"},
		Entry{4, "Frost or ice"},
		Entry{5, "Flood over 3cm. deep"},
		Entry{6, "Oil or diesel"},
		Entry{7, "Mud"},
	)

	Genders = NewRegistry("gender", "Gender",
		Entry{0, "Gender"},
		Entry{1, "Male"},
		Entry{2, "Female"},
		Entry{3, "Prefer not to say"},
	)
)

// Registries returns every registry in form order.
func Registries() []*Registry {
	return []*Registry{VehicleTypes, Days, Weather, Light, RoadSurfaces, Genders}
}
