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
	"github.com/kiaorakahi/marketplace/pkg/obs"
	"github.com/kiaorakahi/marketplace/pkg/rpc"
	celebrityv1 "github.com/kiaorakahi/marketplace/proto/celebrity/v1"
	"github.com/kiaorakahi/marketplace/services/celebrity-service/internal/repository"
	"github.com/kiaorakahi/marketplace/services/celebrity-service/internal/service"
	tgrpc "github.com/kiaorakahi/marketplace/services/celebrity-service/internal/transport/grpc"
)

type CelebrityCfg struct {
	CelebrityDSN      string `envconfig:"CELEBRITY_DSN" required:"true"`
	CelebrityGRPCAddr string `envconfig:"CELEBRITY_GRPC_ADDR" default:":50052"`
}

func loadCfg() (CelebrityCfg, error) {
	var c CelebrityCfg
	err := envconfig.Process("", &c)
	return c, err
}

func main() {
	_ = godotenv.Load(".env")
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("[celebrity] config: %v", err)
	}

	shutdown := obs.InitTracer("celebrity-service")
	defer func() { _ = shutdown(context.Background()) }()

	gdb := db.Open(cfg.CelebrityDSN)
	repo := repository.NewCelebrityRepo(gdb)
	if err := repo.Migrate(); err != nil {
		log.Fatal(err)
	}
	svc := service.NewCelebritySvc(repo)

	lis, err := net.Listen("tcp", cfg.CelebrityGRPCAddr)
	if err != nil {
		log.Fatal(err)
	}
	s := rpc.NewServer()
	celebrityv1.RegisterCelebrityServiceServer(s, tgrpc.NewServer(svc))
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		s.GracefulStop()
	}()

	log.Printf("[celebrity] gRPC on %s", cfg.CelebrityGRPCAddr)
	if err := s.Serve(lis); err != nil {
		log.Fatal(err)
	}
}
