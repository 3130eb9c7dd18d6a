//go:build !no_serial

// sw-probe feeds readings into a sensewire server, either simulated or
// read off a serial-attached sensor board.
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/tarm/serial"

	"sensewire/internal/probe"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "sensewire server url")
	secret := flag.String("secret", os.Getenv("SW_CLIENT_SECRET"), "client secret")
	device := flag.String("device", "probe_1", "device id for simulated readings")
	interval := flag.Duration("interval", time.Second, "interval between simulated readings")
	sim := flag.Bool("sim", false, "simulate readings instead of reading serial")
	port := flag.String("port", "/dev/ttyUSB0", "serial port")
	baud := flag.Int("baud", 9600, "serial baud rate")
	flag.Parse()

	p := probe.New(*serverURL, *secret)
	ctx := context.Background()

	if *sim {
		runSim(ctx, p, *device, *interval)
		return
	}

	s, err := serial.OpenPort(&serial.Config{Name: *port, Baud: *baud})
	if err != nil {
		log.Fatalf("open serial %s: %v", *port, err)
	}

	scanner := bufio.NewScanner(s)
	for scanner.Scan() {
		r, err := probe.ParseLine(scanner.Text())
		if err != nil {
			log.Printf("skipping line: %v", err)
			continue
		}
		id, err := p.PostReading(ctx, r)
		if err != nil {
			log.Printf("post error: %v", err)
			continue
		}
		log.Printf("posted %s id=%s", r.DeviceID, id)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("serial read: %v", err)
	}
}
