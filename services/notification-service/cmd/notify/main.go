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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/kiaorakahi/marketplace/pkg/obs"
	"github.com/kiaorakahi/marketplace/services/notification-service/internal/hub"
	"github.com/kiaorakahi/marketplace/services/notification-service/internal/notifier"
	"github.com/kiaorakahi/marketplace/services/notification-service/internal/worker"
)

type Cfg struct {
	RabbitURL string   `envconfig:"RABBIT_URL" required:"true"`
	Exchanges []string `envconfig:"NOTIFY_EXCHANGES" default:"booking.exchange,payment.exchange,support.exchange"`
	Queue     string   `envconfig:"NOTIFY_QUEUE" default:"notification.q"`
	Bindings  []string `envconfig:"NOTIFY_BINDINGS" default:"booking.*,payment.*,support.*"`
	DLXName   string   `envconfig:"NOTIFY_DLX" default:"notification.dlx"`
	DLXQueue  string   `envconfig:"NOTIFY_DLQ" default:"notification.q.dlq"`
	Prefetch  int      `envconfig:"NOTIFY_PREFETCH" default:"16"`

	// WebSocket push
	HTTPAddr       string   `envconfig:"NOTIFY_HTTP_ADDR" default:":8082"`
	JWTSecret      string   `envconfig:"JWT_SECRET" required:"true"`
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func main() {
	_ = godotenv.Load(".env")
	var cfg Cfg
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal(err)
	}

	shutdown := obs.InitTracer("notification-service")
	defer func() { _ = shutdown(context.Background()) }()

	h := hub.New(cfg.AllowedOrigins)
	cons := worker.NewConsumer(worker.Config{
		RabbitURL:   cfg.RabbitURL,
		Exchanges:   cfg.Exchanges,
		Queue:       cfg.Queue,
		Bindings:    cfg.Bindings,
		Prefetch:    cfg.Prefetch,
		UseDLX:      true,
		DLXName:     cfg.DLXName,
		DLXQueue:    cfg.DLXQueue,
		ServiceName: "notification-service",
	}, notifier.Multi{notifier.NewConsole(), h})

	for {
		if err := cons.Connect(); err != nil {
			log.Printf("[notify] connect failed: %v; retry in 2s", err)
			time.Sleep(2 * time.Second)
			continue
		}
		break
	}
	defer cons.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := cons.Run(ctx); err != nil {
			log.Printf("[notify] run error: %v", err)
		}
	}()

	r := gin.Default()
	r.Use(otelgin.Middleware("notification-service"))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	h.Register(r)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Printf("[notify] ws on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	log.Printf("[notify] started. queue=%s exchanges=%v bindings=%v dlq=%s",
		cfg.Queue, cfg.Exchanges, cfg.Bindings, cfg.DLXQueue)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()
	sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	_ = srv.Shutdown(sctx)
}
