package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rgcaparas/intellipark/api"
	"github.com/rgcaparas/intellipark/config"
	"github.com/rgcaparas/intellipark/internal/service/parking"
)

// Run starts the HTTP server and blocks until the context is cancelled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, parkingSvc parking.ParkingUseCase) error {
	router := NewRouter(cfg, parkingSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter wires middleware and routes onto a gin engine.
func NewRouter(cfg *config.Config, parkingSvc parking.ParkingUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(cors(cfg.HTTP.AllowedOrigins))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "IntelliPark backend running")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	api.NewParkingHandler(parkingSvc).Register(apiGroup)
	api.NewWebhookHandler(parkingSvc).Register(apiGroup)

	return router
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// cors allows the kiosk and website origins listed in the config. The
// webhook endpoint is server-to-server and unaffected.
func cors(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; ok {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, X-Request-ID")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
