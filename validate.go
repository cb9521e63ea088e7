package paintmix

import "fmt"

// Input contract bounds.
const (
	MinPoolSize      = 2
	MaxPoolSize      = 100
	MinFormulaPaints = 2
	MaxFormulaPaints = 5
	MaxTimeLimitMS   = 30000
)

// ValidateRequest checks the request against the input contract and returns
// a *ValidationError aggregating every violated field, or nil. Mode defaults
// are expected to be applied before validation (Optimize does this).
func ValidateRequest(req Request) error {
	var fields []FieldError

	fields = append(fields, validateLab("targetColor", req.TargetColor.L, req.TargetColor.A, req.TargetColor.B)...)

	switch n := len(req.AvailablePaints); {
	case n < MinPoolSize:
		fields = append(fields, FieldError{
			Field:   "availablePaints",
			Code:    CodeInsufficientPaints,
			Message: fmt.Sprintf("at least %d candidate paints are required, got %d", MinPoolSize, n),
		})
	case n > MaxPoolSize:
		fields = append(fields, FieldError{
			Field:   "availablePaints",
			Message: fmt.Sprintf("at most %d candidate paints are allowed, got %d", MaxPoolSize, n),
		})
	}

	for i, p := range req.AvailablePaints {
		prefix := fmt.Sprintf("availablePaints[%d]", i)
		if p.ID == "" {
			fields = append(fields, FieldError{Field: prefix + ".id", Message: "paint id must not be empty"})
		}
		fields = append(fields, validateLab(prefix+".color", p.Color.L, p.Color.A, p.Color.B)...)
		fields = append(fields, validateUnit(prefix+".kubelkaMunk.k", p.KubelkaMunk.K)...)
		fields = append(fields, validateUnit(prefix+".kubelkaMunk.s", p.KubelkaMunk.S)...)
		fields = append(fields, validateUnit(prefix+".opacity", p.Opacity)...)
		fields = append(fields, validateUnit(prefix+".tintingStrength", p.TintingStrength)...)
	}

	if req.MaxPaintCount < MinFormulaPaints || req.MaxPaintCount > MaxFormulaPaints {
		fields = append(fields, FieldError{
			Field:   "maxPaintCount",
			Message: fmt.Sprintf("maxPaintCount must be between %d and %d, got %d", MinFormulaPaints, MaxFormulaPaints, req.MaxPaintCount),
		})
	}
	if req.TimeLimitMS <= 0 {
		fields = append(fields, FieldError{
			Field:   "timeLimit",
			Message: fmt.Sprintf("timeLimit must be positive, got %d", req.TimeLimitMS),
		})
	} else if req.TimeLimitMS > MaxTimeLimitMS {
		fields = append(fields, FieldError{
			Field:   "timeLimit",
			Message: fmt.Sprintf("timeLimit must be <= %d ms, got %d", MaxTimeLimitMS, req.TimeLimitMS),
		})
	}
	if req.AccuracyTarget < 0 {
		fields = append(fields, FieldError{
			Field:   "accuracyTarget",
			Message: fmt.Sprintf("accuracyTarget must be >= 0, got %g", req.AccuracyTarget),
		})
	}

	fields = append(fields, validateVolumeConstraints(req.VolumeConstraints)...)

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func validateLab(field string, l, a, b float64) []FieldError {
	var fields []FieldError
	if l < 0 {
		fields = append(fields, FieldError{Field: field + ".l", Message: "Lightness (l) must be >= 0"})
	}
	if l > 100 {
		fields = append(fields, FieldError{Field: field + ".l", Message: "Lightness (l) must be <= 100"})
	}
	if a < -128 || a > 127 {
		fields = append(fields, FieldError{Field: field + ".a", Message: fmt.Sprintf("Green-red axis (a) must be between -128 and 127, got %g", a)})
	}
	if b < -128 || b > 127 {
		fields = append(fields, FieldError{Field: field + ".b", Message: fmt.Sprintf("Blue-yellow axis (b) must be between -128 and 127, got %g", b)})
	}
	return fields
}

func validateUnit(field string, v float64) []FieldError {
	if v < 0 || v > 1 {
		return []FieldError{{Field: field, Message: fmt.Sprintf("must be between 0 and 1, got %g", v)}}
	}
	return nil
}

func validateVolumeConstraints(vc *VolumeConstraints) []FieldError {
	if vc == nil {
		return nil
	}
	var fields []FieldError
	if vc.MinTotalVolumeML < 0 {
		fields = append(fields, FieldError{Field: "volumeConstraints.min_total_volume_ml", Message: "must be >= 0"})
	}
	if vc.MaxTotalVolumeML <= 0 {
		fields = append(fields, FieldError{Field: "volumeConstraints.max_total_volume_ml", Message: "must be > 0"})
	}
	if vc.MaxTotalVolumeML < vc.MinTotalVolumeML {
		fields = append(fields, FieldError{
			Field:   "volumeConstraints.max_total_volume_ml",
			Message: fmt.Sprintf("max_total_volume_ml (%g) must be >= min_total_volume_ml (%g)", vc.MaxTotalVolumeML, vc.MinTotalVolumeML),
		})
	}
	if vc.MinimumComponentVolumeML != nil && *vc.MinimumComponentVolumeML < 0 {
		fields = append(fields, FieldError{Field: "volumeConstraints.minimum_component_volume_ml", Message: "must be >= 0"})
	}
	if vc.MaximumComponentVolumeML != nil && *vc.MaximumComponentVolumeML <= 0 {
		fields = append(fields, FieldError{Field: "volumeConstraints.maximum_component_volume_ml", Message: "must be > 0"})
	}
	if vc.MinimumComponentVolumeML != nil && vc.MaximumComponentVolumeML != nil &&
		*vc.MaximumComponentVolumeML < *vc.MinimumComponentVolumeML {
		fields = append(fields, FieldError{
			Field:   "volumeConstraints.maximum_component_volume_ml",
			Message: fmt.Sprintf("maximum_component_volume_ml (%g) must be >= minimum_component_volume_ml (%g)", *vc.MaximumComponentVolumeML, *vc.MinimumComponentVolumeML),
		})
	}
	return fields
}
