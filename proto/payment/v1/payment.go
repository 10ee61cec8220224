// Package paymentv1 is the contract of payment-service.
package paymentv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kiaorakahi/marketplace/pkg/rpc"
)

const ServiceName = "payment.v1.PaymentService"

type Intent struct {
	Id             string `json:"id"`
	OrderId        string `json:"order_id"`
	OrderNumber    string `json:"order_number"`
	CustomerId     string `json:"customer_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	ClientSecret   string `json:"client_secret"`
	Status         string `json:"status"`
	ChargeId       string `json:"charge_id,omitempty"`
	FailureCode    string `json:"failure_code,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`
}

type CreateIntentRequest struct {
	OrderId        string `json:"order_id"`
	OrderNumber    string `json:"order_number"`
	CustomerId     string `json:"customer_id"`
	CustomerEmail  string `json:"customer_email"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	IdempotencyKey string `json:"idempotency_key"`
}

type IntentResponse struct {
	Intent *Intent `json:"intent"`
}

type ConfirmIntentRequest struct {
	ClientSecret string `json:"client_secret"`
	CardToken    string `json:"card_token"`
	ReturnUri    string `json:"return_uri"`
}

type ConfirmIntentResponse struct {
	Intent       *Intent `json:"intent"`
	AuthorizeUri string  `json:"authorize_uri,omitempty"`
}

type GetIntentRequest struct {
	ClientSecret   string `json:"client_secret"`
	OrderId        string `json:"order_id"`
	IdempotencyKey string `json:"idempotency_key"`
}

type GetChargeRequest struct {
	ChargeId string `json:"charge_id"`
}

type GetChargeResponse struct {
	ChargeId       string `json:"charge_id"`
	Status         string `json:"status"`
	FailureCode    string `json:"failure_code,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`
}

type PaymentServiceServer interface {
	CreateIntent(context.Context, *CreateIntentRequest) (*IntentResponse, error)
	ConfirmIntent(context.Context, *ConfirmIntentRequest) (*ConfirmIntentResponse, error)
	GetIntent(context.Context, *GetIntentRequest) (*IntentResponse, error)
	GetCharge(context.Context, *GetChargeRequest) (*GetChargeResponse, error)
}

type UnimplementedPaymentServiceServer struct{}

func (UnimplementedPaymentServiceServer) CreateIntent(context.Context, *CreateIntentRequest) (*IntentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "CreateIntent not implemented")
}
func (UnimplementedPaymentServiceServer) ConfirmIntent(context.Context, *ConfirmIntentRequest) (*ConfirmIntentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "ConfirmIntent not implemented")
}
func (UnimplementedPaymentServiceServer) GetIntent(context.Context, *GetIntentRequest) (*IntentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "GetIntent not implemented")
}
func (UnimplementedPaymentServiceServer) GetCharge(context.Context, *GetChargeRequest) (*GetChargeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "GetCharge not implemented")
}

var PaymentService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PaymentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "CreateIntent", PaymentServiceServer.CreateIntent),
		rpc.Unary(ServiceName, "ConfirmIntent", PaymentServiceServer.ConfirmIntent),
		rpc.Unary(ServiceName, "GetIntent", PaymentServiceServer.GetIntent),
		rpc.Unary(ServiceName, "GetCharge", PaymentServiceServer.GetCharge),
	},
}

func RegisterPaymentServiceServer(s grpc.ServiceRegistrar, srv PaymentServiceServer) {
	s.RegisterService(&PaymentService_ServiceDesc, srv)
}

type PaymentServiceClient interface {
	CreateIntent(ctx context.Context, in *CreateIntentRequest, opts ...grpc.CallOption) (*IntentResponse, error)
	ConfirmIntent(ctx context.Context, in *ConfirmIntentRequest, opts ...grpc.CallOption) (*ConfirmIntentResponse, error)
	GetIntent(ctx context.Context, in *GetIntentRequest, opts ...grpc.CallOption) (*IntentResponse, error)
	GetCharge(ctx context.Context, in *GetChargeRequest, opts ...grpc.CallOption) (*GetChargeResponse, error)
}

type paymentServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPaymentServiceClient(cc grpc.ClientConnInterface) PaymentServiceClient {
	return &paymentServiceClient{cc: cc}
}

func (c *paymentServiceClient) CreateIntent(ctx context.Context, in *CreateIntentRequest, opts ...grpc.CallOption) (*IntentResponse, error) {
	return rpc.Invoke[IntentResponse](ctx, c.cc, ServiceName, "CreateIntent", in, opts...)
}
func (c *paymentServiceClient) ConfirmIntent(ctx context.Context, in *ConfirmIntentRequest, opts ...grpc.CallOption) (*ConfirmIntentResponse, error) {
	return rpc.Invoke[ConfirmIntentResponse](ctx, c.cc, ServiceName, "ConfirmIntent", in, opts...)
}
func (c *paymentServiceClient) GetIntent(ctx context.Context, in *GetIntentRequest, opts ...grpc.CallOption) (*IntentResponse, error) {
	return rpc.Invoke[IntentResponse](ctx, c.cc, ServiceName, "GetIntent", in, opts...)
}
func (c *paymentServiceClient) GetCharge(ctx context.Context, in *GetChargeRequest, opts ...grpc.CallOption) (*GetChargeResponse, error) {
	return rpc.Invoke[GetChargeResponse](ctx, c.cc, ServiceName, "GetCharge", in, opts...)
}
