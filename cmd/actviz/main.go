package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/lukaszgryglicki/actviz/internal/actviz"
)

func main() {
	actviz.Debug = os.Getenv("DEBUG") != ""
	actviz.PNG = os.Getenv("PNG") != ""
	actviz.RAW = os.Getenv("RAW") != ""
	serve := os.Getenv("SERVE") != ""
	profile := os.Getenv("PROFILE") != ""
	if profile {
		f, err := os.Create("cpu.out")
		if err != nil {
			panic(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			panic(err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	cfg := "configs/config.json"
	if len(os.Args) > 1 {
		cfg = os.Args[1]
	}
	run := actviz.Run
	if serve {
		run = actviz.Serve
	}
	if err := run(cfg); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
