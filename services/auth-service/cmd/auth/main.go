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
	authv1 "github.com/kiaorakahi/marketplace/proto/auth/v1"
	"github.com/kiaorakahi/marketplace/services/auth-service/internal/repository"
	"github.com/kiaorakahi/marketplace/services/auth-service/internal/service"
	tgrpc "github.com/kiaorakahi/marketplace/services/auth-service/internal/transport/grpc"
)

type Cfg struct {
	AuthDSN      string `envconfig:"AUTH_DSN" required:"true"`
	AuthGRPCAddr string `envconfig:"AUTH_GRPC_ADDR" default:":50051"`
	JWTSecret    string `envconfig:"JWT_SECRET" required:"true"`

	// optional bootstrap admin
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	AdminName     string `envconfig:"ADMIN_NAME" default:"Platform Admin"`
}

func main() {
	_ = godotenv.Load(".env")
	var cfg Cfg
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal(err)
	}

	shutdown := obs.InitTracer("auth-service")
	defer func() { _ = shutdown(context.Background()) }()

	gdb := db.Open(cfg.AuthDSN)
	repo := repository.NewUserRepo(gdb)
	if err := repo.Migrate(); err != nil {
		log.Fatal(err)
	}
	svc := service.NewAuthSvc(repo)
	if cfg.AdminEmail != "" {
		if err := svc.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			log.Fatalf("[auth] bootstrap admin: %v", err)
		}
	}

	grpcServer := rpc.NewServer()
	authv1.RegisterAuthServiceServer(grpcServer, tgrpc.NewServer(svc))

	lis, err := net.Listen("tcp", cfg.AuthGRPCAddr)
	if err != nil {
		log.Fatal(err)
	}
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		grpcServer.GracefulStop()
	}()

	log.Printf("[auth] gRPC on %s", cfg.AuthGRPCAddr)
	if err := grpcServer.Serve(lis); err != nil {
		log.Fatal(err)
	}
}
