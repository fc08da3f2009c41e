package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const DefaultPrefix = "storefront"

type Config struct {
	ServeAddress    string        `envconfig:"serve_address" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"shutdown_timeout" default:"15s"`
	LogLevel        string        `envconfig:"log_level" default:"info"`

	MongoURI      string `envconfig:"mongo_uri" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"mongo_database" default:"storefront"`
	MigrationsDir string `envconfig:"migrations_dir" default:"migrations"`

	JWTSecret       string        `envconfig:"jwt_secret" required:"true"`
	TokenTTL        time.Duration `envconfig:"token_ttl" default:"360h"`
	BcryptCost      int           `envconfig:"bcrypt_cost" default:"10"`
	DashboardSecret string        `envconfig:"dashboard_secret"`

	SMTPHost     string        `envconfig:"smtp_host" default:"smtp.gmail.com"`
	SMTPPort     int           `envconfig:"smtp_port" default:"465"`
	SMTPUsername string        `envconfig:"smtp_username"`
	SMTPPassword string        `envconfig:"smtp_password"`
	SMTPFrom     string        `envconfig:"smtp_from"`
	SMTPSSL      bool          `envconfig:"smtp_ssl" default:"true"`
	SMTPTimeout  time.Duration `envconfig:"smtp_timeout" default:"10s"`

	AdminEmail    string `envconfig:"admin_email"`
	StorefrontURL string `envconfig:"storefront_url" default:"http://localhost:3000"`

	AMQPURL      string `envconfig:"amqp_url"`
	AMQPExchange string `envconfig:"amqp_exchange" default:"storefront.events"`

	GeoBaseURL string        `envconfig:"geo_base_url" default:"https://ipapi.co"`
	GeoTimeout time.Duration `envconfig:"geo_timeout" default:"1s"`

	Workers        int           `envconfig:"workers" default:"4"`
	QueueCapacity  int           `envconfig:"queue_capacity" default:"256"`
	TaskTimeout    time.Duration `envconfig:"task_timeout" default:"30s"`
	AnalyticsRate  float64       `envconfig:"analytics_rate" default:"50"`
	AnalyticsBurst int           `envconfig:"analytics_burst" default:"100"`
}

func Load(prefix string) (*Config, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	c := &Config{}
	if err := envconfig.Process(prefix, c); err != nil {
		return nil, errors.Wrap(err, "failed to parse config from env")
	}
	return c, nil
}
