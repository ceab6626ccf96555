package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hauswert/internal/database"
	"hauswert/internal/orchestrator"
)

func SetupRoutes(router *gin.Engine, orch *orchestrator.Orchestrator, db *database.Database, logger *logrus.Logger) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
	}))

	handler := NewHandler(orch, db, logger)

	api := router.Group("/api")
	{
		api.POST("/valuations", handler.CreateValuation)
		api.GET("/valuations/recent", handler.GetRecentValuations)
		api.GET("/regions", handler.GetRegions)
		api.GET("/health", handler.GetHealth)
	}
}
