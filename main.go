package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"p9e.in/saf/config"
	"p9e.in/saf/handlers"
	"p9e.in/saf/middleware"
	"p9e.in/saf/pkg/photostore"
	"p9e.in/saf/pkg/sessionstore"
	"p9e.in/saf/pkg/verification"
	"p9e.in/saf/routes"
)

var (
	Version   = "dev"
	BuildTime = ""
)

func main() {

	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	settings := config.Load()
	config.Connect()
	verification.SetDisplayLocation(settings.Location())

	// Run migrations
	if err := config.Migrations(config.DB); err != nil {
		log.Fatalf("could not run migrations: %v", err)
	}

	// Run seeding (will skip if data already exists)
	if err := config.RunAllSeeding(config.DB, settings.SeedDemo); err != nil {
		log.Printf("Warning: seeding encountered issues: %v", err)
	}

	memory, err := openSessions(settings)
	if err != nil {
		log.Fatalf("could not open session store: %v", err)
	}

	photos, err := openPhotos(context.Background(), settings)
	if err != nil {
		log.Fatalf("could not open photo store: %v", err)
	}
	handlers.Photos = photos

	limiter := middleware.NewIPRateLimiter(settings.LoginRatePerMinute, settings.LoginBurst)

	c, err := newSweeper(sweepSpec, limiter, memory)
	if err != nil {
		log.Fatalf("could not schedule sweeper: %v", err)
	}
	c.Start()
	defer c.Stop()

	opts := routes.Options{LoginLimiter: limiter}
	if settings.PhotoStore == "local" {
		opts.UploadDir = settings.UploadDir
	}
	handler := routes.RegisterRoutes(opts)
	handler = middleware.CORS(corsOrigin(settings.FrontendURL))(handler)
	handler = middleware.RequestLogger(handler)

	log.Println("Server starting at port", settings.Port)
	log.Fatal(http.ListenAndServe(":"+settings.Port, handler))
}

const sweepSpec = "@every 5m"

// newSweeper schedules the expiry of idle rate-limit visitors and, when the
// in-memory store is used, of expired drafts and capture sessions
func newSweeper(spec string, limiter *middleware.IPRateLimiter, memory *sessionstore.Memory) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		n := limiter.Sweep(30 * time.Minute)
		if memory != nil {
			n += memory.Sweep()
		}
		if n > 0 {
			log.Printf("[SWEEP] removed %d expired entries", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule sweeper %q: %w", spec, err)
	}
	return c, nil
}

// openSessions installs the draft/capture/revocation store. The in-memory
// store is returned so the sweeper can expire it.
func openSessions(s config.Settings) (*sessionstore.Memory, error) {
	switch s.SessionStore {
	case "redis":
		r, err := sessionstore.NewRedis(s.RedisAddr, s.RedisPassword, s.RedisDB, "saf:")
		if err != nil {
			return nil, err
		}
		handlers.Sessions = r
		middleware.TokenStore = r
		log.Printf("[SESSION] redis at %s", s.RedisAddr)
		return nil, nil
	case "memory", "":
		m := sessionstore.NewMemory()
		handlers.Sessions = m
		middleware.TokenStore = m
		log.Println("[SESSION] in-memory store")
		return m, nil
	default:
		return nil, fmt.Errorf("unknown SESSION_STORE %q", s.SessionStore)
	}
}

func openPhotos(ctx context.Context, s config.Settings) (photostore.Store, error) {
	switch s.PhotoStore {
	case "gcs":
		log.Printf("[PHOTO] gcs bucket %s", s.GCSBucket)
		return photostore.NewGCS(ctx, s.GCSBucket)
	case "minio":
		log.Printf("[PHOTO] minio %s/%s", s.MinioEndpoint, s.MinioBucket)
		return photostore.NewMinIO(s.MinioEndpoint, s.MinioAccessKey, s.MinioSecretKey, s.MinioBucket, s.MinioSecure)
	case "local", "":
		log.Printf("[PHOTO] local dir %s", s.UploadDir)
		return photostore.NewLocal(s.UploadDir, "/uploads")
	default:
		return nil, fmt.Errorf("unknown PHOTO_STORE %q", s.PhotoStore)
	}
}

func corsOrigin(frontend string) string {
	if frontend == "" {
		return "*"
	}
	return frontend
}
