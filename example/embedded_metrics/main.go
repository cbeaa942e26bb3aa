package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loykin/warden"
)

// embedded_metrics: register warden's collectors into your own Prometheus
// registry and serve them next to your metrics.
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

	reg := prometheus.NewRegistry()
	if err := warden.RegisterMetrics(reg); err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: ":9100", Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	panic(srv.ListenAndServe())
}
