package grpc

import (
	"context"

	"google.golang.org/grpc/codes"

	"github.com/kiaorakahi/marketplace/pkg/rpc"
	paymentv1 "github.com/kiaorakahi/marketplace/proto/payment/v1"
	"github.com/kiaorakahi/marketplace/services/payment-service/internal/domain"
	"github.com/kiaorakahi/marketplace/services/payment-service/internal/service"
)

var codeMap = rpc.CodeMap{
	domain.ErrNotFound:  codes.NotFound,
	domain.ErrInvalid:   codes.InvalidArgument,
	domain.ErrConflict:  codes.FailedPrecondition,
	domain.ErrProcessor: codes.Unavailable,
}

type Server struct {
	paymentv1.UnimplementedPaymentServiceServer
	svc *service.PaymentSvc
}

func NewServer(s *service.PaymentSvc) *Server { return &Server{svc: s} }

func toPB(p *domain.PaymentIntent) *paymentv1.Intent {
	return &paymentv1.Intent{
		Id:             p.ID,
		OrderId:        p.OrderID,
		OrderNumber:    p.OrderNumber,
		CustomerId:     p.CustomerID,
		Amount:         p.Amount,
		Currency:       p.Currency,
		ClientSecret:   p.ClientSecret,
		Status:         p.Status,
		ChargeId:       p.ChargeID,
		FailureCode:    p.FailureCode,
		FailureMessage: p.FailureMessage,
	}
}

func (s *Server) CreateIntent(ctx context.Context, in *paymentv1.CreateIntentRequest) (*paymentv1.IntentResponse, error) {
	p, err := s.svc.CreateIntent(ctx, service.CreateIntentInput{
		OrderID:        in.OrderId,
		OrderNumber:    in.OrderNumber,
		CustomerID:     in.CustomerId,
		CustomerEmail:  in.CustomerEmail,
		Amount:         in.Amount,
		Currency:       in.Currency,
		IdempotencyKey: in.IdempotencyKey,
	})
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &paymentv1.IntentResponse{Intent: toPB(p)}, nil
}

func (s *Server) ConfirmIntent(ctx context.Context, in *paymentv1.ConfirmIntentRequest) (*paymentv1.ConfirmIntentResponse, error) {
	p, authorizeURI, err := s.svc.Confirm(ctx, service.ConfirmInput{
		ClientSecret: in.ClientSecret,
		CardToken:    in.CardToken,
		ReturnURI:    in.ReturnUri,
	})
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &paymentv1.ConfirmIntentResponse{Intent: toPB(p), AuthorizeUri: authorizeURI}, nil
}

func (s *Server) GetIntent(ctx context.Context, in *paymentv1.GetIntentRequest) (*paymentv1.IntentResponse, error) {
	p, err := s.svc.Get(ctx, in.ClientSecret, in.OrderId, in.IdempotencyKey)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &paymentv1.IntentResponse{Intent: toPB(p)}, nil
}

func (s *Server) GetCharge(ctx context.Context, in *paymentv1.GetChargeRequest) (*paymentv1.GetChargeResponse, error) {
	ch, err := s.svc.GetCharge(ctx, in.ChargeId)
	if err != nil {
		return nil, codeMap.Status(err)
	}
	return &paymentv1.GetChargeResponse{
		ChargeId:       ch.ID,
		Status:         ch.Status,
		FailureCode:    ch.FailureCode,
		FailureMessage: ch.FailureMessage,
	}, nil
}
