package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"taskhub/internal/handler"
)

// Pinger reports backing store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(taskHandler *handler.TaskHandler, skillHandler *handler.SkillHandler, db Pinger, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), traceMiddleware(), requestLogMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// /health always answers 200 and reports the store state.
	r.GET("/health", func(c *gin.Context) {
		database := "connected"
		if err := ping(c, db); err != nil {
			logger.Warn("Health check: database unreachable", zap.Error(err))
			database = "disconnected"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": database})
	})

	r.GET("/readyz", func(c *gin.Context) {
		if err := ping(c, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	tasks := r.Group("/tasks")
	{
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("", taskHandler.ListTasks)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PUT("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
		tasks.POST("/:id/execute", taskHandler.ExecuteTaskSkill)
	}

	r.GET("/skills", skillHandler.ListSkills)
	r.POST("/skills/:skill_type", skillHandler.RunSkill)

	return r
}

func ping(c *gin.Context, db Pinger) error {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
	defer cancel()
	return db.Ping(ctx)
}
