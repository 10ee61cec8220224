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
	"github.com/kiaorakahi/marketplace/pkg/mq"
	"github.com/kiaorakahi/marketplace/pkg/obs"
	"github.com/kiaorakahi/marketplace/pkg/rpc"
	supportv1 "github.com/kiaorakahi/marketplace/proto/support/v1"
	"github.com/kiaorakahi/marketplace/services/support-service/internal/repository"
	"github.com/kiaorakahi/marketplace/services/support-service/internal/service"
	tgrpc "github.com/kiaorakahi/marketplace/services/support-service/internal/transport/grpc"
)

type Cfg struct {
	SupportDSN      string `envconfig:"SUPPORT_DSN" required:"true"`
	SupportGRPCAddr string `envconfig:"SUPPORT_GRPC_ADDR" default:":50056"`

	// RabbitMQ for publishing support.* events
	RabbitURL       string `envconfig:"RABBIT_URL" required:"true"`
	SupportExchange string `envconfig:"SUPPORT_EXCHANGE" default:"support.exchange"`
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

	shutdown := obs.InitTracer("support-service")
	defer func() { _ = shutdown(context.Background()) }()

	gdb := db.Open(cfg.SupportDSN)
	repo := repository.NewTicketRepo(gdb)
	must(0, repo.Migrate())

	pub := must(mq.NewPublisher(cfg.RabbitURL, cfg.SupportExchange))
	defer pub.Close()

	svc := service.NewSupportSvc(repo, pub)
	lis := must(net.Listen("tcp", cfg.SupportGRPCAddr))
	gs := rpc.NewServer()
	supportv1.RegisterSupportServiceServer(gs, tgrpc.NewServer(svc))

	go func() {
		log.Println("[support] gRPC listening on", cfg.SupportGRPCAddr)
		log.Fatal(gs.Serve(lis))
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	gs.GracefulStop()
	log.Println("[support] stopped")
}
