// Package domain models road accident severity prediction.
//
// # Inputs
//
// A submission has four numeric measurements (driver age, vehicle age,
// engine displacement in cc, speed limit), six coded selections and a
// location. Selections are chosen by label from a [Registry] and translated
// to the integer codes the model was trained on. Code 0 in every registry is
// the "Select ..." placeholder and is never sent to the model.
//
// Registry codes follow the UK STATS19 road-safety data guide:
//
//	Vehicle type: 1 pedal cycle, 2-5 and 97 motorcycles, 8 taxi, 9 car,
//	              10-11 minibus/bus, 16 ridden horse, 17 agricultural,
//	              18 tram, 19-21 and 98 goods, 22 mobility scooter,
//	              23 electric motorcycle, 90 other.
//	Day:          1 Sunday through 7 Saturday.
//	Light:        1 daylight, 4-7 darkness variants (2 and 3 are unused).
//
// # Feature Vector
//
// The model consumes 12 values in a fixed order (see [FeatureNames]):
//
//	age_of_driver, vehicle_type, age_of_vehicle, engine_cc, day, weather,
//	light, road_surface, gender, speed_limit, latitude, longitude
//
// A vector cannot be assembled without coordinates; see [NewFeatureVector].
//
// # Location
//
// Coordinates are either typed in or resolved dynamically by chaining a
// public IP lookup into an IP geolocation lookup ([ResolveLocation]). A
// failed IP lookup makes the location unavailable; an IP the service cannot
// place is reported as not found, which is a warning rather than an error.
//
// # Severity
//
// The model returns a class code: 1 Safe, 2 Moderate, 3 Severe. Any other
// code maps to Unknown ([SeverityFromCode]).
package domain
