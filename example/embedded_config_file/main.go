package main

import (
	"encoding/json"
	"fmt"

	"github.com/loykin/warden"
)

// embedded_config_file: load (or bootstrap) a warden.toml and inspect the
// mutable settings the HTTP settings API exposes.
func main() {
	cfg, err := warden.LoadConfig("warden.toml")
	if err != nil {
		panic(err)
	}

	fmt.Println("listen:", cfg.Listen)
	fmt.Println("stop command:", cfg.Settings().StopCommand())

	b, _ := json.MarshalIndent(cfg.Settings().Map(), "", "  ")
	fmt.Println(string(b))

	// Settings changes persist straight back to the file.
	if err := cfg.Settings().Apply(map[string]string{"ram_max": "4G"}); err != nil {
		panic(err)
	}
	fmt.Println("ram_max now:", cfg.Settings().RAMMax())
}
