package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	cerrors "github.com/toyz/configen/internal/errors"
)

// Package-level validator used by Validate
var validate *validator.Validate

var (
	identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	dottedRe     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report YAML key names rather than Go field names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.RegisterValidation("identifier", validateIdentifier); err != nil {
		panic(fmt.Errorf("register validator identifier: %w", err))
	}
	if err := validate.RegisterValidation("dotted", validateDotted); err != nil {
		panic(fmt.Errorf("register validator dotted: %w", err))
	}
	if err := validate.RegisterValidation("module_pattern", validateModulePattern); err != nil {
		panic(fmt.Errorf("register validator module_pattern: %w", err))
	}
}

// validateIdentifier implements the "identifier" tag: a Python identifier
func validateIdentifier(fl validator.FieldLevel) bool {
	return identifierRe.MatchString(fl.Field().String())
}

// validateDotted implements the "dotted" tag: a dotted Python module name
func validateDotted(fl validator.FieldLevel) bool {
	return dottedRe.MatchString(fl.Field().String())
}

// validateModulePattern implements the "module_pattern" tag. The pattern must
// place the module name somewhere, otherwise every module would collide.
func validateModulePattern(fl validator.FieldLevel) bool {
	return strings.Contains(fl.Field().String(), "{{module_name}}")
}

// Validate checks a configuration file's structure and cross-field rules
func Validate(f *File) error {
	errs := cerrors.NewMultipleErrors()

	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			errs.Add(cerrors.NewValidationError(fieldPath(fe), describe(fe), fe.Value()))
		}
	}

	if len(f.SchemaDirs) == 0 && len(f.GoPackages) == 0 {
		errs.Add(cerrors.NewValidationError("schema_dirs", "at least one of schema_dirs or go_packages is required", nil))
	}

	return errs.ErrorOrNil()
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "unique":
		if fe.Param() != "" {
			return fmt.Sprintf("must have unique %s values", strings.ToLower(fe.Param()))
		}
		return "must not contain duplicates"
	case "identifier":
		return "must be a valid Python identifier"
	case "dotted":
		return "must be a dotted Python module name"
	case "module_pattern":
		return "must contain {{module_name}}"
	default:
		return fmt.Sprintf("failed '%s' validation", fe.Tag())
	}
}
