package clients

import (
	"log"

	"google.golang.org/grpc"

	"github.com/kiaorakahi/marketplace/pkg/config"
	"github.com/kiaorakahi/marketplace/pkg/rpc"
	authv1 "github.com/kiaorakahi/marketplace/proto/auth/v1"
	bookingv1 "github.com/kiaorakahi/marketplace/proto/booking/v1"
	celebrityv1 "github.com/kiaorakahi/marketplace/proto/celebrity/v1"
	paymentv1 "github.com/kiaorakahi/marketplace/proto/payment/v1"
	supportv1 "github.com/kiaorakahi/marketplace/proto/support/v1"
	userv1 "github.com/kiaorakahi/marketplace/proto/user/v1"
)

type Clients struct {
	Auth      authv1.AuthServiceClient
	Celebrity celebrityv1.CelebrityServiceClient
	Book      bookingv1.BookingServiceClient
	Pay       paymentv1.PaymentServiceClient
	User      userv1.UserServiceClient
	Support   supportv1.SupportServiceClient

	conns []*grpc.ClientConn
}

func New(cfg config.App) *Clients {
	c := &Clients{}
	dial := func(addr string) *grpc.ClientConn {
		cc, err := rpc.Dial(addr)
		if err != nil {
			log.Fatalf("[gateway] dial %s: %v", addr, err)
		}
		c.conns = append(c.conns, cc)
		return cc
	}

	c.Auth = authv1.NewAuthServiceClient(dial(cfg.AuthGRPCAddr))
	c.Celebrity = celebrityv1.NewCelebrityServiceClient(dial(cfg.CelebrityGRPCAddr))
	c.Book = bookingv1.NewBookingServiceClient(dial(cfg.BookingGRPCAddr))
	c.Pay = paymentv1.NewPaymentServiceClient(dial(cfg.PaymentGRPCAddr))
	c.User = userv1.NewUserServiceClient(dial(cfg.UserGRPCAddr))
	c.Support = supportv1.NewSupportServiceClient(dial(cfg.SupportGRPCAddr))
	return c
}

func (c *Clients) Close() {
	for _, cc := range c.conns {
		_ = cc.Close()
	}
}
