package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/kiaorakahi/marketplace/pkg/db"
	"github.com/kiaorakahi/marketplace/pkg/events"
	"github.com/kiaorakahi/marketplace/pkg/mq"
	"github.com/kiaorakahi/marketplace/pkg/obs"
	"github.com/kiaorakahi/marketplace/pkg/rpc"
	paymentv1 "github.com/kiaorakahi/marketplace/proto/payment/v1"

	cons "github.com/kiaorakahi/marketplace/services/payment-service/internal/consumer"
	httpx "github.com/kiaorakahi/marketplace/services/payment-service/internal/http"
	omisecli "github.com/kiaorakahi/marketplace/services/payment-service/internal/omise"
	"github.com/kiaorakahi/marketplace/services/payment-service/internal/processor"
	"github.com/kiaorakahi/marketplace/services/payment-service/internal/repository"
	paysvc "github.com/kiaorakahi/marketplace/services/payment-service/internal/service"
	tgrpc "github.com/kiaorakahi/marketplace/services/payment-service/internal/transport/grpc"
)

type Cfg struct {
	PaymentDSN      string `envconfig:"PAYMENT_DSN" required:"true"`
	PaymentGRPCAddr string `envconfig:"PAYMENT_GRPC_ADDR" default:":50054"`
	WebhookHTTPAddr string `envconfig:"PAYMENT_WEBHOOK_HTTP_ADDR" default:":8081"`

	MockMode bool   `envconfig:"PAYMENT_MOCK_MODE" default:"false"`
	OmisePub string `envconfig:"OMISE_PUBLIC_KEY"`
	OmiseSec string `envconfig:"OMISE_SECRET_KEY"`

	RabbitURL       string `envconfig:"RABBIT_URL" required:"true"`
	PaymentExchange string `envconfig:"PAYMENT_EXCHANGE" default:"payment.exchange"`
	BookingExchange string `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange"`
	RefundQueue     string `envconfig:"PAYMENT_REFUND_QUEUE" default:"payment.refund.q"`
}

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func newProcessor(cfg Cfg) processor.Processor {
	if cfg.MockMode {
		log.Println("[payment] PAYMENT_MOCK_MODE on, charges are simulated")
		return processor.NewMock()
	}
	if cfg.OmisePub == "" || cfg.OmiseSec == "" {
		log.Fatal("[payment] OMISE_PUBLIC_KEY and OMISE_SECRET_KEY are required unless PAYMENT_MOCK_MODE=true")
	}
	return must(omisecli.NewOmiseClient(cfg.OmisePub, cfg.OmiseSec))
}

func main() {
	_ = godotenv.Load(".env")
	var cfg Cfg
	must(0, envconfig.Process("", &cfg))

	shutdown := obs.InitTracer("payment-service")
	defer func() { _ = shutdown(context.Background()) }()

	gdb := db.Open(cfg.PaymentDSN)
	repo := repository.NewIntentRepo(gdb)
	must(0, repo.Migrate())

	proc := newProcessor(cfg)

	pub := must(mq.NewPublisher(cfg.RabbitURL, cfg.PaymentExchange))
	defer pub.Close()

	svc := paysvc.NewPaymentSvc(repo, proc, pub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bookingCons := must(mq.NewConsumer(cfg.RabbitURL, cfg.BookingExchange, cfg.RefundQueue, []string{events.RKBookingCancelled}))
	defer bookingCons.Close()
	cons.NewBookingConsumer(svc, bookingCons).Run(ctx)
	log.Println("[payment] consumer started (booking.cancelled)")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), otelgin.Middleware("payment-webhook"))
	httpx.NewWebhookServer(proc, svc).Register(r)
	hs := &http.Server{Addr: cfg.WebhookHTTPAddr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Println("[payment] webhook http listening on", cfg.WebhookHTTPAddr)
		if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	lis := must(net.Listen("tcp", cfg.PaymentGRPCAddr))
	gs := rpc.NewServer()
	paymentv1.RegisterPaymentServiceServer(gs, tgrpc.NewServer(svc))

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
		sctx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = hs.Shutdown(sctx)
		gs.GracefulStop()
	}()

	log.Println("[payment] gRPC listening on", cfg.PaymentGRPCAddr)
	if err := gs.Serve(lis); err != nil {
		log.Fatal(err)
	}
	log.Println("[payment] stopped")
}
