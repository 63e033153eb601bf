package app

import (
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"

	"github.com/sylvain-bouchard/capture-api/internal/config"
	"github.com/sylvain-bouchard/capture-api/internal/handlers"
	"github.com/sylvain-bouchard/capture-api/internal/registry"
	"github.com/sylvain-bouchard/capture-api/internal/service"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, reg *registry.Registry) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	userHandler := handlers.NewUserHandler(resolveUserService(reg))
	r.POST("/users", userHandler.Create)
	r.GET("/users", userHandler.List)
	r.GET("/users/:id", userHandler.GetByID)
	r.DELETE("/users/:id", userHandler.Delete)
}

// resolveUserService looks the user service up in the registry. A missing
// entry is a wiring bug, not a request error: fail fast at route
// construction.
func resolveUserService(reg *registry.Registry) *service.UserService {
	s, ok := reg.Get(service.UserServiceName)
	if !ok {
		log.Fatalf("%s not registered", service.UserServiceName)
	}
	userSvc, ok := s.(*service.UserService)
	if !ok {
		log.Fatalf("%s registered with unexpected type %T", service.UserServiceName, s)
	}
	return userSvc
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Capture API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}
