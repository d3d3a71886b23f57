package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/bibbank/bib/pkg/iso20022"
	"github.com/bibbank/bib/services/directdebit-service/internal/application/dto"
)

// MessageValidator checks a serialized message against its schema.
type MessageValidator interface {
	Validate(xml []byte) error
}

// ValidateMessage checks an arbitrary pain.008 payload against the embedded
// schema and reports every violation found.
type ValidateMessage struct {
	validator MessageValidator
}

func NewValidateMessage(validator MessageValidator) *ValidateMessage {
	return &ValidateMessage{validator: validator}
}

// Execute returns a response describing the violations. An error is returned
// only when validation itself could not run.
func (uc *ValidateMessage) Execute(ctx context.Context, req dto.ValidateMessageRequest) (dto.ValidateMessageResponse, error) {
	if err := ctx.Err(); err != nil {
		return dto.ValidateMessageResponse{}, err
	}

	err := uc.validator.Validate(req.XML)
	if err == nil {
		return dto.ValidateMessageResponse{Valid: true}, nil
	}

	var sve *iso20022.SchemaValidationError
	if !errors.As(err, &sve) {
		return dto.ValidateMessageResponse{}, fmt.Errorf("validate message: %w", err)
	}

	violations := make([]dto.ViolationDTO, len(sve.Violations))
	for i, v := range sve.Violations {
		violations[i] = dto.ViolationDTO{Element: v.Element, Message: v.Message}
	}
	return dto.ValidateMessageResponse{Violations: violations}, nil
}
