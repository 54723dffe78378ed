package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	GinMode        string        `env:"GIN_MODE" envDefault:"release"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`

	MongoURI string `env:"MONGO_URI,required,notEmpty"`
	DBName   string `env:"DB_NAME" envDefault:"events"`

	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	// BookingRateLimit is per client IP, in limiter notation ("20-M").
	BookingRateLimit string `env:"BOOKING_RATE_LIMIT" envDefault:"20-M"`
	RedisURL         string `env:"REDIS_URL"`

	Cloudinary Cloudinary `envPrefix:"CLOUDINARY_"`
	Mail       Mail

	// EnvFileLoaded reports whether a .env file was found by Load.
	EnvFileLoaded bool
}

// Cloudinary credentials; uploads are disabled when CloudName is empty.
type Cloudinary struct {
	CloudName string `env:"CLOUD_NAME"`
	APIKey    string `env:"API_KEY"`
	APISecret string `env:"API_SECRET"`
	Folder    string `env:"FOLDER" envDefault:"events"`
}

// Mail configures the ZeptoMail API; confirmations are off when APIURL is empty.
type Mail struct {
	APIURL   string        `env:"ZEPTO_API_URL"` // e.g. https://api.zeptomail.com/v1.1/email
	APIKey   string        `env:"ZEPTO_API_KEY"` // e.g. Zoho-enczapikey xxxxx
	From     string        `env:"EMAIL_FROM"`
	FromName string        `env:"EMAIL_FROM_NAME" envDefault:"Events"`
	Timeout  time.Duration `env:"EMAIL_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file and then the process environment.
// Values already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	loaded := godotenv.Load(files...) == nil

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.EnvFileLoaded = loaded
	return &cfg, nil
}

// Connect opens a MongoDB client and verifies it with a ping.
func Connect(ctx context.Context, cfg *Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}
