package iso20022

// MessageType represents ISO 20022 message types.
type MessageType string

const (
	// Payment Initiation
	Pain008 MessageType = "pain.008.001.08" // CustomerDirectDebitInitiation
)

const namespacePrefix = "urn:iso:std:iso:20022:tech:xsd:"

// Namespace returns the XML namespace of the message type, for example
// "urn:iso:std:iso:20022:tech:xsd:pain.008.001.08".
func (t MessageType) Namespace() string {
	return namespacePrefix + string(t)
}

// Message is the base interface for all ISO 20022 messages.
type Message interface {
	Type() MessageType
	ToXML() ([]byte, error)
}
