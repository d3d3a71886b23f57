package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/bib/pkg/auth"
	"github.com/bibbank/bib/pkg/iso20022"
	"github.com/bibbank/bib/services/directdebit-service/internal/application/dto"
	"github.com/bibbank/bib/services/directdebit-service/internal/application/usecase"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/service"
	"github.com/bibbank/bib/services/directdebit-service/internal/domain/valueobject"
)

// maxMessageBytes bounds ValidateMessage payloads.
const maxMessageBytes = 8 << 20

// Compile-time assertion that DirectDebitHandler implements DirectDebitServiceServer.
var _ DirectDebitServiceServer = (*DirectDebitHandler)(nil)

// DirectDebitHandler implements the gRPC DirectDebitService server.
type DirectDebitHandler struct {
	UnimplementedDirectDebitServiceServer
	generate *usecase.GenerateCollection
	validate *usecase.ValidateMessage
	logger   *slog.Logger
}

func NewDirectDebitHandler(
	generate *usecase.GenerateCollection,
	validate *usecase.ValidateMessage,
	logger *slog.Logger,
) *DirectDebitHandler {
	return &DirectDebitHandler{
		generate: generate,
		validate: validate,
		logger:   logger,
	}
}

// GenerateCollection builds, validates and stores a pain.008 message. The
// caller must be entitled to collect for the creditor in the request.
func (h *DirectDebitHandler) GenerateCollection(ctx context.Context, req *GenerateCollectionRequest) (*GenerateCollectionResponse, error) {
	if req.Creditor == nil {
		return nil, status.Error(codes.InvalidArgument, "creditor is required")
	}
	if err := requireCreditor(ctx, req.Creditor.CreditorID); err != nil {
		return nil, err
	}

	in, err := toGenerateCollectionDTO(req)
	if err != nil {
		return nil, err
	}

	resp, err := h.generate.Execute(ctx, in)
	if err != nil {
		return nil, h.toStatus(err)
	}

	return &GenerateCollectionResponse{
		MessageID:               resp.MessageID,
		Destination:             resp.Destination,
		NumberOfTransactions:    int32(resp.NumberOfTransactions),
		ControlSum:              resp.ControlSum.StringFixed(2),
		Currency:                resp.Currency,
		CreationDateTime:        resp.CreationDateTime.Format(iso20022.DateTimeLayout),
		RequestedCollectionDate: resp.RequestedCollectionDate.Format(iso20022.DateLayout),
	}, nil
}

// ValidateMessage checks a serialized message against the pain.008.001.08
// schema. Violations are part of a successful response.
func (h *DirectDebitHandler) ValidateMessage(ctx context.Context, req *ValidateMessageRequest) (*ValidateMessageResponse, error) {
	if req.XML == "" {
		return nil, status.Error(codes.InvalidArgument, "xml is required")
	}
	if len(req.XML) > maxMessageBytes {
		return nil, status.Errorf(codes.InvalidArgument, "xml exceeds %d bytes", maxMessageBytes)
	}

	resp, err := h.validate.Execute(ctx, dto.ValidateMessageRequest{XML: []byte(req.XML)})
	if err != nil {
		return nil, h.toStatus(err)
	}

	out := &ValidateMessageResponse{Valid: resp.Valid}
	for _, v := range resp.Violations {
		out.Violations = append(out.Violations, &ViolationMsg{Element: v.Element, Message: v.Message})
	}
	return out, nil
}

// requireCreditor checks that the caller may collect for creditorID.
func requireCreditor(ctx context.Context, creditorID string) error {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "authentication required")
	}
	if !claims.MayCollectFor(creditorID) {
		return status.Errorf(codes.PermissionDenied, "not entitled to collect for creditor %q", creditorID)
	}
	return nil
}

func toGenerateCollectionDTO(req *GenerateCollectionRequest) (dto.GenerateCollectionRequest, error) {
	out := dto.GenerateCollectionRequest{
		Creditor: dto.CreditorRequest{
			Name:       req.Creditor.Name,
			IBAN:       req.Creditor.IBAN,
			BIC:        req.Creditor.BIC,
			CreditorID: req.Creditor.CreditorID,
		},
		MessageID:      req.MessageID,
		Destination:    req.Destination,
		SkipValidation: req.SkipValidation,
		Transactions:   make([]dto.TransactionRequest, 0, len(req.Transactions)),
	}
	if req.CollectionDelayDays != nil {
		delay := int(*req.CollectionDelayDays)
		out.CollectionDelayDays = &delay
	}

	for i, tx := range req.Transactions {
		field := "transactions[" + strconv.Itoa(i) + "]"
		if tx == nil || tx.Debtor == nil {
			return dto.GenerateCollectionRequest{}, badRequest(field+".debtor", "debtor is required")
		}
		amount, err := decimal.NewFromString(tx.Amount)
		if err != nil {
			return dto.GenerateCollectionRequest{}, badRequest(field+".amount", fmt.Sprintf("invalid amount %q", tx.Amount))
		}
		signedAt, err := time.Parse(iso20022.DateLayout, tx.MandateSignedAt)
		if err != nil {
			return dto.GenerateCollectionRequest{}, badRequest(field+".mandate_signed_at",
				fmt.Sprintf("invalid date %q, want YYYY-MM-DD", tx.MandateSignedAt))
		}
		out.Transactions = append(out.Transactions, dto.TransactionRequest{
			Debtor: dto.DebtorRequest{
				Name: tx.Debtor.Name,
				IBAN: tx.Debtor.IBAN,
				BIC:  tx.Debtor.BIC,
			},
			Amount:                amount,
			Currency:              tx.Currency,
			MandateID:             tx.MandateID,
			MandateSignedAt:       signedAt,
			EndToEndID:            tx.EndToEndID,
			RemittanceInformation: tx.RemittanceInformation,
		})
	}
	return out, nil
}

// toStatus maps use case errors to gRPC status codes.
func (h *DirectDebitHandler) toStatus(err error) error {
	var (
		ve         *valueobject.ValidationError
		sve        *iso20022.SchemaValidationError
		storageErr *service.StorageError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.As(err, &ve):
		return badRequest(ve.Field, err.Error())
	case errors.As(err, &sve):
		st := status.New(codes.FailedPrecondition, err.Error())
		br := &errdetails.BadRequest{}
		for _, v := range sve.Violations {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       v.Element,
				Description: v.Message,
			})
		}
		if detailed, derr := st.WithDetails(br); derr == nil {
			return detailed.Err()
		}
		return st.Err()
	case errors.As(err, &storageErr):
		h.logger.Error("message storage failed", "destination", storageErr.Destination, "error", err)
		return status.Error(codes.Unavailable, "message storage unavailable")
	default:
		h.logger.Error("direct debit request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func badRequest(field, description string) error {
	st := status.New(codes.InvalidArgument, description)
	detailed, err := st.WithDetails(&errdetails.BadRequest{
		FieldViolations: []*errdetails.BadRequest_FieldViolation{{Field: field, Description: description}},
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}
