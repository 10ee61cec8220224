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
	userv1 "github.com/kiaorakahi/marketplace/proto/user/v1"
	"github.com/kiaorakahi/marketplace/services/user-service/internal/repository"
	"github.com/kiaorakahi/marketplace/services/user-service/internal/service"
	tgrpc "github.com/kiaorakahi/marketplace/services/user-service/internal/transport/grpc"
)

type Cfg struct {
	UserGRPCAddr string `envconfig:"USER_GRPC_ADDR" default:":50055"`
	UserDSN      string `envconfig:"USER_DSN" required:"true"`
}

func main() {
	_ = godotenv.Load(".env")
	var cfg Cfg
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal(err)
	}

	shutdown := obs.InitTracer("user-service")
	defer func() { _ = shutdown(context.Background()) }()

	gdb := db.Open(cfg.UserDSN)
	repo := repository.NewUserRepo(gdb)
	if err := repo.Migrate(); err != nil {
		log.Fatal(err)
	}
	svc := service.NewUserSvc(repo)

	grpcServer := rpc.NewServer()
	userv1.RegisterUserServiceServer(grpcServer, tgrpc.NewServer(svc))

	lis, err := net.Listen("tcp", cfg.UserGRPCAddr)
	if err != nil {
		log.Fatal(err)
	}
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		grpcServer.GracefulStop()
	}()

	log.Printf("[user] gRPC on %s", cfg.UserGRPCAddr)
	if err := grpcServer.Serve(lis); err != nil {
		log.Fatal(err)
	}
}
