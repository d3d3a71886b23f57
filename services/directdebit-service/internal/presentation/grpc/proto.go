package grpc

// proto.go defines the gRPC server interface for bib.sepa.v1.DirectDebitService.
// It stands in for buf-generated code; the message structs travel with the
// JSON codec registered in json_codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	serviceName = "bib.sepa.v1.DirectDebitService"

	MethodGenerateCollection = "/" + serviceName + "/GenerateCollection"
	MethodValidateMessage    = "/" + serviceName + "/ValidateMessage"
)

// DirectDebitServiceServer is the server API for DirectDebitService.
type DirectDebitServiceServer interface {
	GenerateCollection(context.Context, *GenerateCollectionRequest) (*GenerateCollectionResponse, error)
	ValidateMessage(context.Context, *ValidateMessageRequest) (*ValidateMessageResponse, error)
	mustEmbedUnimplementedDirectDebitServiceServer()
}

// UnimplementedDirectDebitServiceServer provides forward-compatible default implementations.
type UnimplementedDirectDebitServiceServer struct{}

func (UnimplementedDirectDebitServiceServer) GenerateCollection(context.Context, *GenerateCollectionRequest) (*GenerateCollectionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GenerateCollection not implemented")
}
func (UnimplementedDirectDebitServiceServer) ValidateMessage(context.Context, *ValidateMessageRequest) (*ValidateMessageResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ValidateMessage not implemented")
}
func (UnimplementedDirectDebitServiceServer) mustEmbedUnimplementedDirectDebitServiceServer() {}

// RegisterDirectDebitServiceServer registers the DirectDebitServiceServer with the gRPC server.
func RegisterDirectDebitServiceServer(s grpclib.ServiceRegistrar, srv DirectDebitServiceServer) {
	s.RegisterService(&_DirectDebitService_serviceDesc, srv) //nolint:revive // gRPC handler registration
}

//nolint:revive // gRPC handler registration
var _DirectDebitService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*DirectDebitServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "GenerateCollection", Handler: _DirectDebitService_GenerateCollection_Handler}, //nolint:revive // gRPC handler registration
		{MethodName: "ValidateMessage", Handler: _DirectDebitService_ValidateMessage_Handler},       //nolint:revive // gRPC handler registration
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "bib/sepa/v1/directdebit.proto",
}

//nolint:revive,errcheck // gRPC handler registration
func _DirectDebitService_GenerateCollection_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(GenerateCollectionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DirectDebitServiceServer).GenerateCollection(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodGenerateCollection,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DirectDebitServiceServer).GenerateCollection(ctx, req.(*GenerateCollectionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _DirectDebitService_ValidateMessage_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(ValidateMessageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DirectDebitServiceServer).ValidateMessage(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodValidateMessage,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DirectDebitServiceServer).ValidateMessage(ctx, req.(*ValidateMessageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Temporary gRPC message types until proto generation is wired.

type CreditorMsg struct {
	Name       string `json:"name"`
	IBAN       string `json:"iban"`
	BIC        string `json:"bic"`
	CreditorID string `json:"creditor_id"`
}

type DebtorMsg struct {
	Name string `json:"name"`
	IBAN string `json:"iban"`
	BIC  string `json:"bic,omitempty"`
}

type TransactionMsg struct {
	Debtor                *DebtorMsg `json:"debtor"`
	Amount                string     `json:"amount"`
	Currency              string     `json:"currency,omitempty"`
	MandateID             string     `json:"mandate_id"`
	MandateSignedAt       string     `json:"mandate_signed_at"` // YYYY-MM-DD
	EndToEndID            string     `json:"end_to_end_id,omitempty"`
	RemittanceInformation string     `json:"remittance_information,omitempty"`
}

type GenerateCollectionRequest struct {
	Creditor            *CreditorMsg      `json:"creditor"`
	MessageID           string            `json:"message_id,omitempty"`
	Destination         string            `json:"destination,omitempty"`
	Transactions        []*TransactionMsg `json:"transactions"`
	CollectionDelayDays *int32            `json:"collection_delay_days,omitempty"`
	SkipValidation      bool              `json:"skip_validation,omitempty"`
}

type GenerateCollectionResponse struct {
	MessageID               string `json:"message_id"`
	Destination             string `json:"destination"`
	NumberOfTransactions    int32  `json:"number_of_transactions"`
	ControlSum              string `json:"control_sum"`
	Currency                string `json:"currency"`
	CreationDateTime        string `json:"creation_date_time"`
	RequestedCollectionDate string `json:"requested_collection_date"`
}

type ValidateMessageRequest struct {
	XML string `json:"xml"`
}

type ViolationMsg struct {
	Element string `json:"element,omitempty"`
	Message string `json:"message"`
}

type ValidateMessageResponse struct {
	Valid      bool            `json:"valid"`
	Violations []*ViolationMsg `json:"violations,omitempty"`
}
