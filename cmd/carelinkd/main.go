package main

import (
	"flag"

	"go.uber.org/fx"

	"github.com/matheus3301/carelink/internal/daemon"
)

func main() {
	configFlag := flag.String("config", "", "config file path (default ~/.carelink/config.toml)")
	flag.Parse()

	app := fx.New(
		daemon.Module(daemon.Params{ConfigPath: *configFlag}),
	)

	app.Run()
}
