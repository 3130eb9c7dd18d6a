// Package probe feeds readings into a sensewire server over HTTP.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sensewire/internal/shared"
)

type Probe struct {
	ServerURL string
	Secret    string
	Client    *http.Client
}

func New(serverURL, secret string) *Probe {
	return &Probe{
		ServerURL: strings.TrimRight(serverURL, "/"),
		Secret:    secret,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// PostReading submits one reading and returns the server-assigned id.
func (p *Probe) PostReading(ctx context.Context, r shared.SensorReading) (string, error) {
	body, _ := json.Marshal(r)

	req, err := http.NewRequestWithContext(ctx, "POST", p.ServerURL+"/sensors", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-Secret", p.Secret)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		return "", errors.New("post reading failed: " + strings.TrimSpace(string(b)))
	}

	var ir shared.IngestResponse
	if err := json.Unmarshal(b, &ir); err != nil {
		return "", err
	}
	return ir.ID, nil
}

// Simulated synthesizes a plausible environmental reading for -sim runs.
func Simulated(deviceID string) shared.SensorReading {
	tc := 18.0 + rand.Float64()*12.0
	return shared.SensorReading{
		DeviceID:     deviceID,
		TimestampMS:  time.Now().UnixMilli(), // server discards this
		TemperatureC: tc,
		TemperatureF: tc*9/5 + 32,
		HumidityPct:  35.0 + rand.Float64()*40.0,
		PressureHPa:  990.0 + rand.Float64()*40.0,
		AltitudeM:    30.0 + rand.Float64()*5.0,
	}
}

// ParseLine parses one serial line in the firmware's CSV layout:
//
//	device_id,temp_c,humidity_pct,pressure_hpa,altitude_m
func ParseLine(line string) (shared.SensorReading, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 5 {
		return shared.SensorReading{}, fmt.Errorf("want 5 fields, got %d", len(parts))
	}

	deviceID := strings.TrimSpace(parts[0])
	if deviceID == "" {
		return shared.SensorReading{}, errors.New("empty device id")
	}

	nums := make([]float64, 4)
	for i, raw := range parts[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return shared.SensorReading{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		nums[i] = v
	}

	return shared.SensorReading{
		DeviceID:     deviceID,
		TimestampMS:  time.Now().UnixMilli(),
		TemperatureC: nums[0],
		TemperatureF: nums[0]*9/5 + 32,
		HumidityPct:  nums[1],
		PressureHPa:  nums[2],
		AltitudeM:    nums[3],
	}, nil
}
