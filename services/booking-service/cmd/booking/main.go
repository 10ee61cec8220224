package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/kiaorakahi/marketplace/pkg/db"
	"github.com/kiaorakahi/marketplace/pkg/events"
	"github.com/kiaorakahi/marketplace/pkg/mq"
	"github.com/kiaorakahi/marketplace/pkg/obs"
	"github.com/kiaorakahi/marketplace/pkg/rpc"
	bookingv1 "github.com/kiaorakahi/marketplace/proto/booking/v1"
	cons "github.com/kiaorakahi/marketplace/services/booking-service/internal/consumer"
	"github.com/kiaorakahi/marketplace/services/booking-service/internal/repository"
	"github.com/kiaorakahi/marketplace/services/booking-service/internal/service"
	tgrpc "github.com/kiaorakahi/marketplace/services/booking-service/internal/transport/grpc"
)

type Cfg struct {
	BookingDSN      string `envconfig:"BOOKING_DSN" required:"true"`
	BookingGRPCAddr string `envconfig:"BOOKING_GRPC_ADDR" default:":50053"`
	Currency        string `envconfig:"CURRENCY" default:"nzd"`

	// RabbitMQ for consuming payment events
	RabbitURL       string `envconfig:"RABBIT_URL" required:"true"`
	PaymentExchange string `envconfig:"PAYMENT_EXCHANGE" default:"payment.exchange"`
	PaymentQueue    string `envconfig:"BOOKING_PAYMENT_QUEUE" default:"booking.payment.q"`

	// RabbitMQ for publishing booking.* events
	BookingExchange string `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange"`
}

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func main() {
	_ = godotenv.Load(".env")
	var cfg Cfg
	must(0, envconfig.Process("", &cfg))

	shutdown := obs.InitTracer("booking-service")
	defer func() { _ = shutdown(context.Background()) }()

	gdb := db.Open(cfg.BookingDSN)
	repo := repository.NewOrderRepo(gdb)
	must(0, repo.Migrate())

	bookingPub := must(mq.NewPublisher(cfg.RabbitURL, cfg.BookingExchange))
	defer bookingPub.Close()

	svc := service.NewOrderSvc(repo, bookingPub)
	lis := must(net.Listen("tcp", cfg.BookingGRPCAddr))
	gs := rpc.NewServer()
	bookingv1.RegisterBookingServiceServer(gs, tgrpc.NewServer(svc, cfg.Currency))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	paymentCons := must(mq.NewConsumer(cfg.RabbitURL, cfg.PaymentExchange, cfg.PaymentQueue, []string{events.RKPaymentPaid}))
	defer paymentCons.Close()
	cons.NewPaymentConsumer(svc, paymentCons).Run(ctx)
	log.Println("[booking] consumer started (payment.paid)")

	go func() {
		log.Println("[booking] gRPC listening on", cfg.BookingGRPCAddr)
		log.Fatal(gs.Serve(lis))
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	cancel()
	gs.GracefulStop()
	log.Println("[booking] stopped")
}
