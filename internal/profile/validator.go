package profile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Validator checks profile files against the JSON schema plus rules the
// schema cannot express.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the profile schema at the given path.
func NewValidator(schemaPath string) (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	schema, err := compiler.Compile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// ValidateDirectory loads and validates every profile file in a directory.
func (v *Validator) ValidateDirectory(dirPath string) []ValidationError {
	profiles, loadErrors := LoadFromDirectory(dirPath)

	var allErrors []ValidationError
	allErrors = append(allErrors, loadErrors...)

	if len(profiles) == 0 {
		return allErrors
	}

	for _, pf := range profiles {
		allErrors = append(allErrors, v.validateSchema(pf.File, pf.Profile)...)
	}

	allErrors = append(allErrors, validateExtraRules(profiles)...)

	return allErrors
}

// ValidateProfile checks one in-memory profile against the consistency
// rules without a schema pass. Used for the built-in default and for
// profiles assembled in tests.
func ValidateProfile(p *Profile) []ValidationError {
	return checkConsistency("(in-memory)", p)
}

// validateSchema validates a single profile against the JSON schema.
func (v *Validator) validateSchema(file string, p *Profile) []ValidationError {
	var errs []ValidationError

	// Round-trip through YAML to get the generic document shape the schema
	// validator expects.
	yamlBytes, err := yaml.Marshal(p)
	if err != nil {
		errs = append(errs, ValidationError{
			File:    file,
			Message: fmt.Sprintf("failed to marshal profile: %v", err),
		})
		return errs
	}

	var doc interface{}
	if err := yaml.Unmarshal(yamlBytes, &doc); err != nil {
		errs = append(errs, ValidationError{
			File:    file,
			Message: fmt.Sprintf("failed to convert to JSON: %v", err),
		})
		return errs
	}

	if err := v.schema.Validate(doc); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			errs = append(errs, extractSchemaErrors(file, validationErr)...)
		} else {
			errs = append(errs, ValidationError{File: file, Message: err.Error()})
		}
	}

	return errs
}

func extractSchemaErrors(file string, err *jsonschema.ValidationError) []ValidationError {
	var errs []ValidationError

	path := strings.Join(err.InstanceLocation, ".")
	if path == "" {
		path = "(root)"
	}

	errs = append(errs, ValidationError{
		File:    file,
		Path:    path,
		Message: err.Error(),
	})

	for _, cause := range err.Causes {
		errs = append(errs, extractSchemaErrors(file, cause)...)
	}

	return errs
}

// validateExtraRules applies rules the JSON schema cannot express.
func validateExtraRules(profiles []ProfileWithFile) []ValidationError {
	var errs []ValidationError

	idSeen := make(map[string]string)
	for _, pf := range profiles {
		id := pf.Profile.Metadata.ID
		if prevFile, exists := idSeen[id]; exists {
			errs = append(errs, ValidationError{
				File:    pf.File,
				Path:    "metadata.id",
				Message: fmt.Sprintf("duplicate ID %q (also in %s)", id, filepath.Base(prevFile)),
			})
		} else {
			idSeen[id] = pf.File
		}

		errs = append(errs, checkConsistency(pf.File, pf.Profile)...)
	}

	return errs
}

// checkConsistency verifies cross-field ordering invariants.
func checkConsistency(file string, p *Profile) []ValidationError {
	var errs []ValidationError
	spec := p.Spec

	if spec.Blink.ClosedThreshold >= spec.Blink.OpenThreshold {
		errs = append(errs, ValidationError{
			File:    file,
			Path:    "spec.blink",
			Message: fmt.Sprintf("closedThreshold (%.3f) must be < openThreshold (%.3f)", spec.Blink.ClosedThreshold, spec.Blink.OpenThreshold),
		})
	}

	if _, err := ParseDuration(spec.Blink.Window); err != nil {
		errs = append(errs, ValidationError{
			File:    file,
			Path:    "spec.blink.window",
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	}

	if spec.Breathing.MinBPM >= spec.Breathing.MaxBPM {
		errs = append(errs, ValidationError{
			File:    file,
			Path:    "spec.breathing",
			Message: fmt.Sprintf("minBpm (%.1f) must be < maxBpm (%.1f)", spec.Breathing.MinBPM, spec.Breathing.MaxBPM),
		})
	}

	if _, err := ParseDuration(spec.Breathing.Period); err != nil {
		errs = append(errs, ValidationError{
			File:    file,
			Path:    "spec.breathing.period",
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	}

	if spec.Scoring.BlinkRampLow >= spec.Scoring.BlinkRampHigh {
		errs = append(errs, ValidationError{
			File:    file,
			Path:    "spec.scoring",
			Message: fmt.Sprintf("blinkRampLow (%.1f) must be < blinkRampHigh (%.1f)", spec.Scoring.BlinkRampLow, spec.Scoring.BlinkRampHigh),
		})
	}

	if spec.Scoring.BreathingBandLow >= spec.Scoring.BreathingBandHigh {
		errs = append(errs, ValidationError{
			File:    file,
			Path:    "spec.scoring",
			Message: fmt.Sprintf("breathingBandLow (%.1f) must be < breathingBandHigh (%.1f)", spec.Scoring.BreathingBandLow, spec.Scoring.BreathingBandHigh),
		})
	}

	if spec.Zones.DeepFlowBelow >= spec.Zones.BrainFriedAt {
		errs = append(errs, ValidationError{
			File:    file,
			Path:    "spec.zones",
			Message: fmt.Sprintf("deepFlowBelow (%.1f) must be < brainFriedAt (%.1f)", spec.Zones.DeepFlowBelow, spec.Zones.BrainFriedAt),
		})
	}

	if _, err := ParseDuration(spec.Regulation.Cooldown); err != nil {
		errs = append(errs, ValidationError{
			File:    file,
			Path:    "spec.regulation.cooldown",
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	}

	return errs
}
