package main // Entry point package

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/equipment-inventory/internal/config"
	"github.com/iliyamo/equipment-inventory/internal/database"
	"github.com/iliyamo/equipment-inventory/internal/handler"
	"github.com/iliyamo/equipment-inventory/internal/middleware"
	"github.com/iliyamo/equipment-inventory/internal/queue"
	"github.com/iliyamo/equipment-inventory/internal/repository"
	"github.com/iliyamo/equipment-inventory/internal/router"
	"github.com/iliyamo/equipment-inventory/internal/session"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs both the session store and the rate limiter. When it
	// is unreachable sessions fall back to an in-process store and the
	// limiter disables itself, so a missing Redis never blocks boot.
	rdb := config.NewRedisClient()
	ttl := time.Duration(cfg.SessionTTLMin) * time.Minute
	var store session.Store
	if rdb != nil {
		store = session.NewRedisStore(rdb, ttl)
	} else {
		log.Println("redis unavailable, using in-memory session store")
		store = session.NewMemoryStore(ttl)
	}

	users := repository.NewUserRepo(db)
	categories := repository.NewCategoryRepo(db)
	equipment := repository.NewEquipmentRepo(db)
	images := repository.NewProductImageRepo(db)
	cart := repository.NewCartRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.HTTPErrorHandler = errorHandler

	rlCfg := config.LoadRateLimitConfig()
	if rlCfg.Enabled && rdb != nil {
		e.Use(middleware.NewTokenBucket(rlCfg, rdb))
	}
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

	// The consumer drains the equipment event queues into the audit
	// log. It reconnects on its own, so a broker that is down at boot
	// only costs log noise.
	if config.QueueConsumerEnabled() {
		go func() {
			if err := queue.StartInventoryConsumer(); err != nil {
				log.Printf("queue consumer: %v", err)
			}
		}()
	}

	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, store),
		Category:  handler.NewCategoryHandler(categories),
		Equipment: handler.NewEquipmentHandler(equipment, images, cfg.UploadDir),
		Image:     handler.NewImageHandler(cfg, images, equipment),
		Cart:      handler.NewCartHandler(cart),
		User:      handler.NewUserHandler(cfg, users),
		Profile:   handler.NewProfileHandler(cfg, users),
	}, store, cfg.UploadDir, cache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// errorHandler keeps the JSON error envelope uniform for anything the
// handlers did not map themselves (panics, bad routes, echo errors).
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "Server error: " + err.Error()
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if code == http.StatusNotFound {
			msg = "Route not found."
		} else if s, ok := he.Message.(string); ok {
			msg = s
		}
	}
	if cerr := c.JSON(code, echo.Map{"error": msg}); cerr != nil {
		log.Printf("error handler: %v", cerr)
	}
}
