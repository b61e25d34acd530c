package config

import (
	"errors"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrSourceRequired indicates Options.Source was left empty.
	ErrSourceRequired = errors.New("export config: source vault path is required")
	// ErrDestinationRequired indicates Options.Destination was left empty.
	ErrDestinationRequired = errors.New("export config: destination path is required")
	// ErrSourceNotFound indicates Options.Source does not exist on disk.
	ErrSourceNotFound = errors.New("export config: source vault path does not exist")
	// ErrRecursionLimitInvalid indicates a non-positive recursion limit.
	ErrRecursionLimitInvalid = errors.New("export config: recursion limit must be positive")
)

const validationFailedCode = "EXPORT_CONFIG_INVALID"

// Validate checks structural invariants on Options, collects every failure
// into one validation.Errors map keyed by field, and wraps that map in a
// go-errors validation category error, mirroring the wrapping convention
// internal/commands uses for command payload validation.
func (o Options) Validate() error {
	errs := validation.Errors{}

	if strings.TrimSpace(o.Source) == "" {
		errs["source"] = validation.NewError("export.config.source_required", ErrSourceRequired.Error())
	} else if _, err := os.Stat(o.Source); err != nil {
		errs["source"] = validation.NewError("export.config.source_not_found", ErrSourceNotFound.Error())
	}

	if strings.TrimSpace(o.Destination) == "" {
		errs["destination"] = validation.NewError("export.config.destination_required", ErrDestinationRequired.Error())
	}

	if o.RecursionLimit <= 0 {
		errs["recursion_limit"] = validation.NewError("export.config.recursion_limit_invalid", ErrRecursionLimitInvalid.Error())
	}

	if o.StartAtMode == StartAtSubpath && strings.TrimSpace(o.StartAt) == "" {
		errs["start_at"] = validation.NewError("export.config.start_at_required", "start-at subpath must not be empty when start-at mode is set")
	}

	if len(errs) == 0 {
		return nil
	}
	return goerrors.Wrap(errs, goerrors.CategoryValidation, "export configuration invalid").
		WithTextCode(validationFailedCode)
}
