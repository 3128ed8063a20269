package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Skufu/healthapi/internal/catalog"
	"github.com/Skufu/healthapi/internal/resolver"
)

const (
	welcomeMessage  = "Welcome to the Health API!"
	msgNoSymptoms   = "No symptoms provided."
	msgNoDiseases   = "No diseases found for the given symptoms."
	msgBadPayload   = "invalid payload"
	msgUnknownID    = "disease not found"
	msgInvalidID    = "invalid disease id"
	maxRequestBytes = 1 << 20
)

type diseaseInfoRequest struct {
	Symptoms string `json:"symptoms"`
}

func setupRouter(db HealthChecker, cat *catalog.Catalog, logger zerolog.Logger) *gin.Engine {
	res := resolver.New(cat)
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)
	m.observeCatalog(cat)

	router := gin.New()
	router.Use(
		requestID(),
		requestLogger(logger),
		gin.Recovery(),
		limitBodySize(maxRequestBytes),
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
	)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, welcomeMessage)
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	router.POST("/get-disease-info", func(c *gin.Context) {
		var payload diseaseInfoRequest
		if err := c.ShouldBindJSON(&payload); err != nil {
			_ = c.Error(err)
			m.resolved(outcomeInvalidPayload)
			c.JSON(http.StatusBadRequest, gin.H{"error": msgBadPayload})
			return
		}

		result, err := res.Resolve(payload.Symptoms)
		switch {
		case errors.Is(err, resolver.ErrEmptyQuery):
			m.resolved(outcomeEmptyQuery)
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNoSymptoms})
			return
		case errors.Is(err, resolver.ErrNoMatch):
			m.resolved(outcomeNoMatch)
			c.JSON(http.StatusNotFound, gin.H{"error": msgNoDiseases})
			return
		case err != nil:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		m.resolved(outcomeOK)
		c.JSON(http.StatusOK, gin.H{"result": result})
	})

	router.GET("/symptoms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"result": res.Symptoms()})
	})

	router.GET("/diseases/:id", func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidID})
			return
		}
		info, ok := res.Disease(id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": msgUnknownID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": info})
	})

	return router
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
