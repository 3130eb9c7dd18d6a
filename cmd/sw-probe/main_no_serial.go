//go:build no_serial

// sw-probe without the serial reader, for platforms where the serial
// stack is unavailable. Simulation only.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"sensewire/internal/probe"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "sensewire server url")
	secret := flag.String("secret", os.Getenv("SW_CLIENT_SECRET"), "client secret")
	device := flag.String("device", "probe_1", "device id for simulated readings")
	interval := flag.Duration("interval", time.Second, "interval between simulated readings")
	flag.Parse()

	runSim(context.Background(), probe.New(*serverURL, *secret), *device, *interval)
}
