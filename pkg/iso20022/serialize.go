package iso20022

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const indent = "  "

// marshalDocument renders v with the standard XML declaration, two-space
// indentation and a trailing newline. Output is deterministic for equal input.
func marshalDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal xml document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal xml document: %w", err)
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}
