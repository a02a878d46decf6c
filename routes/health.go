package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Public routes (no authentication required)
func setupPublicRoutes(router *gin.Engine, db *mongo.Database, redisClient *redis.Client) {
	router.GET("/health", healthCheck(db, redisClient))
}

func healthCheck(db *mongo.Database, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"database": "ok", "redis": "ok"}

		if err := db.Client().Ping(ctx, readpref.Primary()); err != nil {
			checks["database"] = "unreachable"
			status = http.StatusServiceUnavailable
		}
		if redisClient == nil {
			checks["redis"] = "disabled"
		} else if err := redisClient.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unreachable"
			status = http.StatusServiceUnavailable
		}

		overall := "healthy"
		if status != http.StatusOK {
			overall = "degraded"
		}

		c.JSON(status, gin.H{
			"status": overall,
			"checks": checks,
			"time":   time.Now().UTC(),
		})
	}
}
