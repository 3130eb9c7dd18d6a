package main

import (
	"context"
	"log"
	"time"

	"sensewire/internal/probe"
)

func runSim(ctx context.Context, p *probe.Probe, device string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r := probe.Simulated(device)
			id, err := p.PostReading(ctx, r)
			if err != nil {
				log.Printf("post error: %v", err)
				continue
			}
			log.Printf("posted %s temp=%.1fC id=%s", r.DeviceID, r.TemperatureC, id)
		}
	}
}
