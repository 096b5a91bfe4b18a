// Package ml holds the clinical feature schema and the models trained on it.
package ml

import (
	"fmt"
	"math"
)

// FieldSpec declares one clinical input field and its valid numeric range.
type FieldSpec struct {
	Name string
	Min  float64
	Max  float64
	Desc string
}

// Schema is the fixed, ordered list of the 13 clinical input fields.
// Feature vectors are built in this order at training time and at serving
// time; changing the order silently invalidates every stored model.
var Schema = []FieldSpec{
	{Name: "age", Min: 29, Max: 77, Desc: "Age in years"},
	{Name: "sex", Min: 0, Max: 1, Desc: "Sex (1 = male; 0 = female)"},
	{Name: "cp", Min: 0, Max: 3, Desc: "Chest pain type (0-3)"},
	{Name: "trestbps", Min: 94, Max: 200, Desc: "Resting blood pressure (mm Hg)"},
	{Name: "chol", Min: 126, Max: 564, Desc: "Serum cholesterol (mg/dl)"},
	{Name: "fbs", Min: 0, Max: 1, Desc: "Fasting blood sugar > 120 mg/dl"},
	{Name: "restecg", Min: 0, Max: 2, Desc: "Resting ECG results (0-2)"},
	{Name: "thalach", Min: 71, Max: 202, Desc: "Maximum heart rate achieved"},
	{Name: "exang", Min: 0, Max: 1, Desc: "Exercise induced angina"},
	{Name: "oldpeak", Min: 0, Max: 6.2, Desc: "ST depression induced by exercise"},
	{Name: "slope", Min: 0, Max: 2, Desc: "Slope of peak exercise ST segment"},
	{Name: "ca", Min: 0, Max: 4, Desc: "Major vessels colored by fluoroscopy"},
	{Name: "thal", Min: 0, Max: 3, Desc: "Thalassemia (0-3)"},
}

// FeatureNames returns the schema field names in vector order.
func FeatureNames() []string {
	names := make([]string, len(Schema))
	for i, spec := range Schema {
		names[i] = spec.Name
	}
	return names
}

// FieldError describes a single schema violation in a request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateMap checks a decoded JSON object against the schema. Every field
// must be present, numeric and inside its declared range. All violations are
// collected so the caller can report them together; unknown extra keys are
// ignored.
func ValidateMap(raw map[string]interface{}) []FieldError {
	var errs []FieldError
	for _, spec := range Schema {
		value, ok := raw[spec.Name]
		if !ok {
			errs = append(errs, FieldError{Field: spec.Name, Message: "field is required"})
			continue
		}
		num, ok := value.(float64)
		if !ok {
			errs = append(errs, FieldError{Field: spec.Name, Message: "must be a number"})
			continue
		}
		if math.IsNaN(num) || math.IsInf(num, 0) {
			errs = append(errs, FieldError{Field: spec.Name, Message: "must be a finite number"})
			continue
		}
		if num < spec.Min || num > spec.Max {
			errs = append(errs, FieldError{
				Field:   spec.Name,
				Message: fmt.Sprintf("must be between %g and %g", spec.Min, spec.Max),
			})
		}
	}
	return errs
}

// VectorFromMap builds the ordered feature vector from a decoded JSON object.
// The input must have passed ValidateMap first.
func VectorFromMap(raw map[string]interface{}) []float64 {
	vector := make([]float64, len(Schema))
	for i, spec := range Schema {
		if num, ok := raw[spec.Name].(float64); ok {
			vector[i] = num
		}
	}
	return vector
}
