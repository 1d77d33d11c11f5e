package errors

import "fmt"

// Common error wrapping patterns used throughout the codebase

// SchemaError represents a malformed schema document or Go source schema
type SchemaError struct {
	*BaseError
	Module string // module being loaded, if known
}

// NewSchemaError creates a schema error at the given location
func NewSchemaError(module, message string, loc SourceLocation) *SchemaError {
	return &SchemaError{
		BaseError: New(SchemaErrorCode, message).WithLocation(loc).WithContext("module", module),
		Module:    module,
	}
}

// TypeSyntaxError represents an annotation string that could not be parsed
type TypeSyntaxError struct {
	*BaseError
	Expression string // the offending annotation text
}

// NewTypeSyntaxError wraps a parser failure for an annotation string
func NewTypeSyntaxError(expression string, cause error) *TypeSyntaxError {
	return &TypeSyntaxError{
		BaseError: Wrap(TypeSyntaxErrorCode, fmt.Sprintf("invalid type annotation '%s'", expression), cause).
			WithSuggestions(
				"Use Python annotation syntax, e.g. 'List[int]' or 'Optional[str]'",
				"Omit the type to declare an untyped field",
			),
		Expression: expression,
	}
}

// WrapParseError wraps an error with a "failed to parse" message
func WrapParseError(item string, cause error) *BaseError {
	return Wrap(SchemaErrorCode, fmt.Sprintf("failed to parse %s", item), cause)
}

// WrapGenerateError wraps an error with a "failed to generate" message
func WrapGenerateError(module string, cause error) *BaseError {
	return Wrap(GenerationErrorCode, fmt.Sprintf("failed to generate module '%s'", module), cause).
		WithContext("module", module)
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configName, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configName)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_name", configName).
		WithContext("operation", operation)
}

// NewValidationError reports a configuration value that failed validation
func NewValidationError(field, constraint string, value interface{}) *BaseError {
	return New(ValidationErrorCode, fmt.Sprintf("validation failed for field '%s': %s", field, constraint)).
		WithContext("field", field).
		WithContext("value", value)
}
