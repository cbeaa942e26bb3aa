package main

import (
	"fmt"
	"time"

	"github.com/loykin/warden"
)

// embedded_backup: run a full backup programmatically and poll it to
// completion.
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

	res := app.Engine.Create("full", "")
	fmt.Println(res.Status, res.Message)

	for {
		st := app.Engine.Status()
		fmt.Printf("state=%s progress=%d%% %s\n", st.State, st.Progress, st.Message)
		if st.State != "running" {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}

	records, _ := app.Engine.List()
	for _, r := range records {
		fmt.Printf("%s  %d bytes  %s\n", r.Name, r.Size, r.Created.Format(time.RFC3339))
	}
}
