package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// App is the api-gateway configuration. Backend services declare their own
// Cfg next to main.
type App struct {
	// JWT
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	// Network
	AuthGRPCAddr      string `envconfig:"AUTH_GRPC_ADDR" default:":50051"`
	CelebrityGRPCAddr string `envconfig:"CELEBRITY_GRPC_ADDR" default:":50052"`
	BookingGRPCAddr   string `envconfig:"BOOKING_GRPC_ADDR" default:":50053"`
	PaymentGRPCAddr   string `envconfig:"PAYMENT_GRPC_ADDR" default:":50054"`
	UserGRPCAddr      string `envconfig:"USER_GRPC_ADDR" default:":50055"`
	SupportGRPCAddr   string `envconfig:"SUPPORT_GRPC_ADDR" default:":50056"`

	GatewayHTTPAddr string        `envconfig:"GATEWAY_HTTP_ADDR" default:":8080"`
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"5s"`
	AllowedOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Uploads
	UploadDir     string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:""`

	// Booking wizard
	Currency        string        `envconfig:"CURRENCY" default:"nzd"`
	DraftTTL        time.Duration `envconfig:"DRAFT_TTL" default:"30m"`
	DraftResetDelay time.Duration `envconfig:"DRAFT_RESET_DELAY" default:"300ms"`
	RushDeliveryFee int64         `envconfig:"ADDON_RUSH_DELIVERY" default:"2500"`
	HDDownloadFee   int64         `envconfig:"ADDON_HD_DOWNLOAD" default:"500"`
	SocialShareFee  int64         `envconfig:"ADDON_SOCIAL_SHARE" default:"1000"`

	// Abuse control on public forms
	FormRatePerMin int `envconfig:"FORM_RATE_PER_MIN" default:"5"`
	FormBurst      int `envconfig:"FORM_BURST" default:"3"`
}

func Load() (App, error) {
	_ = godotenv.Load(".env")
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
