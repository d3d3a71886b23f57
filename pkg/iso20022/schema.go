package iso20022

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lestrrat-go/libxml2"
	"github.com/lestrrat-go/libxml2/parser"
	"github.com/lestrrat-go/libxml2/xsd"
)

//go:embed schema/pain.008.001.08.xsd
var pain008Schema []byte

// Pain008Schema returns a copy of the embedded pain.008.001.08 XSD.
func Pain008Schema() []byte {
	out := make([]byte, len(pain008Schema))
	copy(out, pain008Schema)
	return out
}

// Violation is a single schema violation reported by the validator.
type Violation struct {
	// Element is the local name of the offending element, if known.
	Element string
	Message string
}

func (v Violation) String() string {
	if v.Element == "" {
		return v.Message
	}
	return v.Element + ": " + v.Message
}

// SchemaValidationError collects every violation found in one document.
type SchemaValidationError struct {
	Type       MessageType
	Violations []Violation
}

func (e *SchemaValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return fmt.Sprintf("%s schema validation failed with %d violation(s): %s",
		e.Type, len(e.Violations), strings.Join(msgs, "; "))
}

// ResourceError reports that validation could not run, for example because
// the embedded schema failed to load. It never describes the document itself.
type ResourceError struct {
	Op  string
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// ErrEmptyDocument is reported as the sole violation for empty input.
var ErrEmptyDocument = errors.New("document is empty")

// libxml2 reports violations as "Element '{namespace}Name': message".
var violationPattern = regexp.MustCompile(`^Element '([^']*)': (.*)$`)

// ValidatePain008 checks xmlDoc against the embedded pain.008.001.08 schema.
// It returns nil, a *SchemaValidationError carrying every violation, or a
// *ResourceError when the schema itself cannot be used. The input is never
// modified. Each call loads its own schema and document, so calls are safe
// to run concurrently.
func ValidatePain008(xmlDoc []byte) error {
	if len(strings.TrimSpace(string(xmlDoc))) == 0 {
		return &SchemaValidationError{
			Type:       Pain008,
			Violations: []Violation{{Message: ErrEmptyDocument.Error()}},
		}
	}

	schema, err := xsd.Parse(pain008Schema)
	if err != nil {
		return &ResourceError{Op: "load pain.008.001.08 schema", Err: err}
	}
	defer schema.Free()

	doc, err := libxml2.Parse(xmlDoc, parser.XMLParseNoNet)
	if err != nil {
		return &SchemaValidationError{
			Type:       Pain008,
			Violations: []Violation{{Message: "document is not well-formed XML: " + err.Error()}},
		}
	}
	defer doc.Free()

	err = schema.Validate(doc)
	if err == nil {
		return nil
	}

	var sve xsd.SchemaValidationError
	if !errors.As(err, &sve) {
		return &ResourceError{Op: "validate pain.008.001.08 document", Err: err}
	}

	violations := make([]Violation, 0, len(sve.Errors()))
	for _, e := range sve.Errors() {
		violations = append(violations, parseViolation(e.Error()))
	}
	if len(violations) == 0 {
		violations = append(violations, Violation{Message: sve.Error()})
	}
	return &SchemaValidationError{Type: Pain008, Violations: violations}
}

func parseViolation(raw string) Violation {
	raw = strings.TrimSpace(raw)
	m := violationPattern.FindStringSubmatch(raw)
	if m == nil {
		return Violation{Message: raw}
	}
	element := m[1]
	if i := strings.LastIndexByte(element, '}'); i >= 0 {
		element = element[i+1:]
	}
	return Violation{Element: element, Message: m[2]}
}
