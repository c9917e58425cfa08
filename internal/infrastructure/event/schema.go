package event

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/qms/backend/internal/domain/shared"
)

// PropertyType is the basic JSON-like type a payload field must have
type PropertyType string

// Supported property types
const (
	TypeString  PropertyType = "string"
	TypeNumber  PropertyType = "number"
	TypeInteger PropertyType = "integer"
	TypeBoolean PropertyType = "boolean"
	TypeObject  PropertyType = "object"
	TypeArray   PropertyType = "array"
	TypeAny     PropertyType = "any"
)

// Schema describes the payload of one event type
type Schema struct {
	Type           string                  `validate:"required"`
	RequiredFields []string                `validate:"dive,required"`
	Properties     map[string]PropertyType `validate:"dive,keys,required,endkeys,oneof=string number integer boolean object array any"`
}

// SchemaValidationError reports why a payload was rejected
type SchemaValidationError struct {
	EventType     string
	Unregistered  bool
	MissingFields []string
	TypeErrors    map[string]string
}

// Error implements the error interface
func (e *SchemaValidationError) Error() string {
	if e.Unregistered {
		return fmt.Sprintf("no schema registered for event type %q", e.EventType)
	}

	parts := make([]string, 0, 2)
	if len(e.MissingFields) > 0 {
		parts = append(parts, "missing required fields ["+strings.Join(e.MissingFields, ", ")+"]")
	}
	if len(e.TypeErrors) > 0 {
		fields := make([]string, 0, len(e.TypeErrors))
		for f := range e.TypeErrors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			msgs = append(msgs, f+": "+e.TypeErrors[f])
		}
		parts = append(parts, "invalid field types ["+strings.Join(msgs, "; ")+"]")
	}
	return fmt.Sprintf("event %q failed schema validation: %s", e.EventType, strings.Join(parts, ", "))
}

// Unwrap lets errors.Is match shared.ErrSchemaValidation
func (e *SchemaValidationError) Unwrap() error {
	return shared.ErrSchemaValidation
}

// SchemaRegistry holds one schema per event type
type SchemaRegistry struct {
	mu       sync.RWMutex
	schemas  map[string]Schema
	validate *validator.Validate
}

// NewSchemaRegistry creates an empty schema registry
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{
		schemas:  make(map[string]Schema),
		validate: validator.New(),
	}
}

// Register stores the schema for eventType. A later registration replaces an earlier one.
func (r *SchemaRegistry) Register(eventType string, schema Schema) error {
	if schema.Type == "" {
		schema.Type = eventType
	}
	if schema.Type != eventType {
		return shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("schema type %q does not match event type %q", schema.Type, eventType))
	}
	if err := r.validate.Struct(schema); err != nil {
		return shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("invalid schema for %q: %v", eventType, err))
	}

	stored := Schema{
		Type:           eventType,
		RequiredFields: slices.Clone(schema.RequiredFields),
		Properties:     make(map[string]PropertyType, len(schema.Properties)),
	}
	for k, v := range schema.Properties {
		stored.Properties[k] = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[eventType] = stored
	return nil
}

// Get returns the schema registered for eventType
func (r *SchemaRegistry) Get(eventType string) (Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[eventType]
	return s, ok
}

// EventTypes returns all registered event types in sorted order
func (r *SchemaRegistry) EventTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.schemas))
	for t := range r.schemas {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Validate checks payload against the schema of eventType.
// A required field is missing when its key is absent or its value is nil.
// Fields not named in Properties are accepted as-is.
func (r *SchemaRegistry) Validate(eventType string, payload shared.Payload) error {
	schema, ok := r.Get(eventType)
	if !ok {
		return &SchemaValidationError{EventType: eventType, Unregistered: true}
	}

	verr := &SchemaValidationError{EventType: eventType}
	for _, field := range schema.RequiredFields {
		if v, present := payload[field]; !present || v == nil {
			verr.MissingFields = append(verr.MissingFields, field)
		}
	}
	for field, want := range schema.Properties {
		v, present := payload[field]
		if !present || v == nil {
			continue
		}
		if got := kindOf(v); !matches(want, got, v) {
			if verr.TypeErrors == nil {
				verr.TypeErrors = make(map[string]string)
			}
			verr.TypeErrors[field] = fmt.Sprintf("expected %s, got %s", want, got)
		}
	}

	if len(verr.MissingFields) > 0 || len(verr.TypeErrors) > 0 {
		return verr
	}
	return nil
}

func kindOf(v any) PropertyType {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return TypeString
	case reflect.Bool:
		return TypeBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInteger
	case reflect.Float32, reflect.Float64:
		return TypeNumber
	case reflect.Slice, reflect.Array:
		return TypeArray
	case reflect.Map, reflect.Struct:
		return TypeObject
	case reflect.Pointer:
		if rv.IsNil() {
			return TypeAny
		}
		return kindOf(rv.Elem().Interface())
	default:
		return TypeAny
	}
}

func matches(want, got PropertyType, v any) bool {
	switch want {
	case TypeAny:
		return true
	case TypeNumber:
		return got == TypeNumber || got == TypeInteger
	case TypeInteger:
		if got == TypeInteger {
			return true
		}
		if got == TypeNumber {
			f := reflect.Indirect(reflect.ValueOf(v)).Float()
			return f == float64(int64(f))
		}
		return false
	case TypeString:
		// uuid.UUID is a [16]byte array but serialises as a string.
		switch v.(type) {
		case uuid.UUID, *uuid.UUID:
			return true
		}
		return got == TypeString
	default:
		return want == got
	}
}
