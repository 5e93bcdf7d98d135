package http

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/couchcryptid/accident-severity/internal/domain"
	"github.com/couchcryptid/accident-severity/internal/form"
)

//go:embed templates/form.html
var templateFS embed.FS

var formTemplate = template.Must(template.ParseFS(templateFS, "templates/form.html"))

// Form field names. Selection fields are named after their registry.
const (
	fieldAgeOfDriver  = "age_of_driver"
	fieldAgeOfVehicle = "age_of_vehicle"
	fieldEngineCC     = "engine_cc"
	fieldSpeedLimit   = "speed_limit"
	fieldMethod       = "location_method"
	fieldLatitude     = "latitude"
	fieldLongitude    = "longitude"
)

// formField is one input. Fields with Options render as a select.
type formField struct {
	Name     string
	Label    string
	Value    string
	Options  []string
	Selected string
}

type formPage struct {
	Fields         []formField
	Method         string
	DynamicEnabled bool
	Latitude       string
	Longitude      string
	Result         string
	Warning        string
	Error          string
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	page := newFormPage(r.URL.Query(), s.app.DynamicLocationEnabled())

	// Preview coordinates when the page is opened in dynamic mode.
	if page.Method == string(form.MethodDynamic) && page.DynamicEnabled {
		res := s.app.ResolveLocation(r.Context())
		switch res.Status {
		case domain.LocationResolved:
			page.Latitude = formatCoord(res.Coordinates.Lat)
			page.Longitude = formatCoord(res.Coordinates.Lon)
		case domain.LocationNotFound:
			page.Warning = "Location not found. Switch to manual location entry."
		default:
			page.Error = "Could not determine your location automatically. Switch to manual location entry."
		}
	}

	s.renderForm(w, http.StatusOK, page)
}

func (s *Server) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseForm(); err != nil {
		s.renderForm(w, http.StatusBadRequest, formPage{Error: "Could not read the form: " + err.Error()})
		return
	}
	page := newFormPage(r.PostForm, s.app.DynamicLocationEnabled())

	in, err := inputFromForm(r.PostForm)
	if err != nil {
		page.Error = "Please correct the form: " + err.Error()
		s.renderForm(w, http.StatusBadRequest, page)
		return
	}

	out := s.app.Submit(r.Context(), in)
	status := http.StatusOK
	switch {
	case out.Succeeded():
		page.Result = out.Message
		if out.Location != nil {
			page.Latitude = formatCoord(out.Location.Lat)
			page.Longitude = formatCoord(out.Location.Lon)
		}
	case out.Warning != "":
		page.Warning = out.Warning
		status = http.StatusUnprocessableEntity
	default:
		page.Error = out.Message
		status = statusForKind(out.Kind)
	}
	s.renderForm(w, status, page)
}

func (s *Server) renderForm(w http.ResponseWriter, status int, page formPage) {
	if page.Fields == nil {
		page = mergePage(newFormPage(nil, s.app.DynamicLocationEnabled()), page)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := formTemplate.Execute(w, page); err != nil {
		s.logger.Error("render form", "error", err)
	}
}

// mergePage copies the messages of msg onto base.
func mergePage(base, msg formPage) formPage {
	base.Result, base.Warning, base.Error = msg.Result, msg.Warning, msg.Error
	return base
}

// newFormPage builds the page model, keeping any previously submitted values.
func newFormPage(values map[string][]string, dynamicEnabled bool) formPage {
	get := func(key string) string {
		if v := values[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	number := func(name, label string) formField {
		return formField{Name: name, Label: label, Value: get(name)}
	}
	choice := func(reg *domain.Registry) formField {
		selected := get(reg.Name())
		if selected == "" {
			selected = reg.Placeholder()
		}
		return formField{Name: reg.Name(), Label: reg.Field(), Options: reg.Labels(), Selected: selected}
	}

	page := formPage{
		// Model vector order.
		Fields: []formField{
			number(fieldAgeOfDriver, "Age of Driver"),
			choice(domain.VehicleTypes),
			number(fieldAgeOfVehicle, "Age of Vehicle"),
			number(fieldEngineCC, "Engine Capacity (CC)"),
			choice(domain.Days),
			choice(domain.Weather),
			choice(domain.Light),
			choice(domain.RoadSurfaces),
			choice(domain.Genders),
			number(fieldSpeedLimit, "Speed Limit"),
		},
		Method:         string(form.MethodManual),
		DynamicEnabled: dynamicEnabled,
		Latitude:       get(fieldLatitude),
		Longitude:      get(fieldLongitude),
	}
	if m, err := form.ParseLocationMethod(get(fieldMethod)); err == nil {
		page.Method = string(m)
	}
	return page
}

// inputFromForm parses the posted form. Blank measurements are zero; blank
// coordinates are left unset.
func inputFromForm(values map[string][]string) (form.Input, error) {
	get := func(key string) string {
		if v := values[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	number := func(key string) (float64, error) {
		raw := get(key)
		if raw == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be a number", domain.ErrValidation, key)
		}
		return f, nil
	}

	optional := func(key string) (*float64, error) {
		if get(key) == "" {
			return nil, nil
		}
		f, err := number(key)
		if err != nil {
			return nil, err
		}
		return &f, nil
	}

	var in form.Input
	var err error
	if in.AgeOfDriver, err = number(fieldAgeOfDriver); err != nil {
		return in, err
	}
	if in.AgeOfVehicle, err = number(fieldAgeOfVehicle); err != nil {
		return in, err
	}
	if in.EngineCC, err = number(fieldEngineCC); err != nil {
		return in, err
	}
	if in.SpeedLimit, err = number(fieldSpeedLimit); err != nil {
		return in, err
	}

	in.Selections = domain.Selections{
		VehicleType: get(domain.VehicleTypes.Name()),
		Day:         get(domain.Days.Name()),
		Weather:     get(domain.Weather.Name()),
		Light:       get(domain.Light.Name()),
		RoadSurface: get(domain.RoadSurfaces.Name()),
		Gender:      get(domain.Genders.Name()),
	}
	in.Method = form.LocationMethod(get(fieldMethod))
	if m, err := form.ParseLocationMethod(get(fieldMethod)); err == nil {
		in.Method = m
	}

	if in.Method != form.MethodDynamic {
		if in.Latitude, err = optional(fieldLatitude); err != nil {
			return in, err
		}
		if in.Longitude, err = optional(fieldLongitude); err != nil {
			return in, err
		}
	}
	return in, nil
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}
