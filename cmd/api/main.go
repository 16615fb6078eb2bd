package main

import (
	"context"
	"expvar"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/ClementeCano/ReViews/internal/auth"
	"github.com/ClementeCano/ReViews/internal/db"
	"github.com/ClementeCano/ReViews/internal/geo"
	"github.com/ClementeCano/ReViews/internal/ratelimiter"
	"github.com/ClementeCano/ReViews/internal/session"
	"github.com/ClementeCano/ReViews/internal/store"
	"github.com/ClementeCano/ReViews/internal/uploader"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "1.0.0"

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	defaultRequests := 20
	defaultEnabled := false

	requestsPerTimeFrame := defaultRequests
	if val, exists := os.LookupEnv("RATELIMITER_REQUESTS_COUNT"); exists {
		if parsedVal, err := strconv.Atoi(val); err == nil {
			requestsPerTimeFrame = parsedVal
		} else {
			log.Println("Invalid RATELIMITER_REQUESTS_COUNT, defaulting to", defaultRequests)
		}
	}

	enabled := defaultEnabled
	if val, exists := os.LookupEnv("RATE_LIMITER_ENABLED"); exists {
		if parsedVal, err := strconv.ParseBool(val); err == nil {
			enabled = parsedVal
		} else {
			log.Println("Invalid RATE_LIMITER_ENABLED, defaulting to", defaultEnabled)
		}
	}

	return ratelimiter.Config{
		RequestsPerTimeFrame: requestsPerTimeFrame,
		TimeFrame:            5 * time.Second,
		Enabled:              enabled,
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	core := zapcore.NewCore(consoleEncoder, zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout)), zapcore.InfoLevel)

	return zap.New(core).Sugar(), nil
}

func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("%s is required", key)
	}
	return val
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment directly")
	}

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	cfg := config{
		addr:     addr,
		env:      env,
		clientID: requireEnv("GOOGLE_CLIENT_ID"),
		db: dbConfig{
			uri: requireEnv("MONGO_URI"),
		},
		rateLimiter: LoadRateLimiterConfig(),
	}

	sessionSecret := requireEnv("SESSION_SECRET")

	logger, err := NewLogger()
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync()

	// Database
	client, err := db.New(cfg.db.uri)
	if err != nil {
		logger.Fatal(err)
	}
	defer client.Disconnect(context.Background())
	logger.Info("database connection established")

	storage := store.NewStorage(client.Database("Parcial2"))

	// Cloudinary
	cld, err := cloudinary.NewFromURL(requireEnv("CLOUDINARY_URL"))
	if err != nil {
		logger.Fatal(err)
	}

	// Google ID-token verifier (fetches the issuer's discovery document)
	verifier, err := auth.NewGoogleVerifier(context.Background(), cfg.clientID)
	if err != nil {
		logger.Fatal(err)
	}

	templates, err := parseTemplates()
	if err != nil {
		logger.Fatal(err)
	}

	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	app := &application{
		config:      cfg,
		logger:      logger,
		store:       storage,
		sessions:    session.NewManager([]byte(sessionSecret), env == "production"),
		verifier:    verifier,
		geocoder:    geo.NewNominatimClient(os.Getenv("GEOCODER_URL")),
		uploader:    uploader.NewCloudinaryUploader(cld),
		rateLimiter: rateLimiter,
		templates:   templates,
	}

	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
