package main

import (
	"fmt"
	"time"

	"github.com/loykin/warden"
)

// embedded_manager: drive the supervisor and console directly from Go,
// without the HTTP layer. Loads (or bootstraps) warden.toml in the cwd.
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

	res := app.Supervisor.Start()
	fmt.Println("start:", res.Status, res.Message)

	// Watch the console for a few seconds.
	q := app.Hub.Subscribe()
	defer app.Hub.Unsubscribe(q)
	deadline := time.After(5 * time.Second)
	for {
		select {
		case line := <-q:
			fmt.Println("console:", line)
		case <-deadline:
			st := app.Supervisor.Stats()
			fmt.Printf("status=%s cpu=%.1f%% ram=%.1fMB uptime=%s\n",
				st.Status, st.CPUPercent, st.RAMMB, st.Uptime)
			fmt.Println("stop:", app.Supervisor.Stop().Message)
			return
		}
	}
}
