package main

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loykin/warden"
)

// embedded_http_echo: mount warden's API inside an echo application.
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

	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "my app with an embedded warden")
	})
	handler := app.Handler()
	e.Any("/warden/*", echo.WrapHandler(http.StripPrefix("/warden", handler)))

	e.Logger.Fatal(e.Start(":8080"))
}
