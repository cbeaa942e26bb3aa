package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/loykin/warden"
)

// embedded_http_gin: mount warden's API inside an existing gin application
// next to your own routes.
func main() {
	cfg, err := warden.LoadConfig("warden.toml")
	if err != nil {
		panic(err)
	}
	app, err := warden.New(cfg)
	if err != nil {
		panic(err)
	}
	defer app.Close()

	g := gin.Default()
	g.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "my app with an embedded warden")
	})
	handler := app.Handler()
	g.Any("/warden/*path", func(c *gin.Context) {
		http.StripPrefix("/warden", handler).ServeHTTP(c.Writer, c.Request)
	})

	if err := g.Run(":8080"); err != nil {
		panic(err)
	}
}
