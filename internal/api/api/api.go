package api

import (
	"entrypass/cmd/middleware"
	"entrypass/internal/auth"
	"entrypass/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"
)

type Routers struct {
	Service  service.Service
	Sessions *auth.Sessions
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())

	apiGroup := app.Group("/v1")
	apiGroup.POST("/register", r.Service.Register)
	apiGroup.GET("/event", r.Service.GetEventInfo)

	scanner := app.Group("/admin/scanner")
	scanner.POST("/login", r.Service.ScannerLogin)
	scanner.GET("/login", func(c *ginext.Context) {
		c.File("./frontend/scanner_login.html")
	})
	scannerAuthed := scanner.Group("", middleware.RequireSession(r.Sessions, auth.RoleScanner, "/admin/scanner/login"))
	scannerAuthed.GET("", func(c *ginext.Context) {
		c.File("./frontend/scanner.html")
	})
	scannerAuthed.POST("/checkin", r.Service.CheckIn)

	host := app.Group("/admin/host")
	host.POST("/login", r.Service.HostLogin)
	host.GET("/login", func(c *ginext.Context) {
		c.File("./frontend/host_login.html")
	})
	hostAuthed := host.Group("", middleware.RequireSession(r.Sessions, auth.RoleHost, "/admin/host/login"))
	hostAuthed.GET("", func(c *ginext.Context) {
		c.File("./frontend/host.html")
	})
	hostAuthed.GET("/stats", r.Service.GetStats)
	hostAuthed.GET("/pins", r.Service.ListPins)
	hostAuthed.POST("/pins", r.Service.GeneratePin)
	hostAuthed.POST("/pins/:id/toggle", r.Service.TogglePin)

	app.GET("/", func(c *ginext.Context) {
		c.File("./frontend/index.html")
	})
	app.Static("/frontend", "./frontend")

	return app
}
