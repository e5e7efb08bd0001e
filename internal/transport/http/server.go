package http

import (
	"github.com/gin-gonic/gin"

	"holistica/internal/bootstrap"
	"holistica/internal/transport/http/handler"
	"holistica/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	libraryHandler := handler.NewLibraryHandler(app.Library)
	askHandler := handler.NewAskHandler(app.Answers, app.History, app.HistoryQueue, app.Logger)

	v1 := router.Group("/api/v1")

	library := v1.Group("/library")
	library.POST("/documents", libraryHandler.IngestDocument)
	library.POST("/upload", libraryHandler.Upload)
	library.GET("/documents", libraryHandler.ListDocuments)
	library.DELETE("/documents/:filename", libraryHandler.RemoveDocument)
	library.POST("/reset", libraryHandler.Reset)
	library.GET("/stats", libraryHandler.Stats)

	v1.POST("/ask", askHandler.Ask)
	v1.GET("/history", askHandler.History)

	return router
}
