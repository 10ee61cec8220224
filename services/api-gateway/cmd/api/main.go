package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiaorakahi/marketplace/pkg/config"
	"github.com/kiaorakahi/marketplace/pkg/obs"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/clients"
	"github.com/kiaorakahi/marketplace/services/api-gateway/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	shutdown := obs.InitTracer("api-gateway")
	defer func() { _ = shutdown(context.Background()) }()

	c := clients.New(cfg)
	defer c.Close()

	srv := &http.Server{Addr: cfg.GatewayHTTPAddr, Handler: router.New(cfg, c)}
	go func() {
		log.Println("api-gateway on", cfg.GatewayHTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
