package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/bib/pkg/iso20022"
)

// RequireSchemaValid fails the test when xml is not a valid pain.008.001.08
// document, listing every violation found.
func RequireSchemaValid(t *testing.T, xml []byte) {
	t.Helper()
	err := iso20022.ValidatePain008(xml)
	var sve *iso20022.SchemaValidationError
	if errors.As(err, &sve) {
		for _, v := range sve.Violations {
			t.Logf("violation: %s", v)
		}
	}
	require.NoError(t, err)
}

// RequireSchemaViolations asserts that err is a schema validation failure
// and returns its violations. With elements given, every violation must
// name one of them.
func RequireSchemaViolations(t *testing.T, err error, elements ...string) []iso20022.Violation {
	t.Helper()
	var sve *iso20022.SchemaValidationError
	require.ErrorAs(t, err, &sve)
	require.NotEmpty(t, sve.Violations)
	if len(elements) > 0 {
		for _, v := range sve.Violations {
			assert.Contains(t, elements, v.Element, "unexpected violation %s", v)
		}
	}
	return sve.Violations
}
