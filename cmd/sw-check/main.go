// sw-check is a smoke check for a running server: hits /health and
// prints the device inventory. Exits non-zero when the server is down.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "sensewire server url")
	flag.Parse()

	base := strings.TrimRight(*serverURL, "/")
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(base + "/health")
	if err != nil {
		log.Fatalf("health check failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		log.Fatalf("health check: status %d", resp.StatusCode)
	}
	fmt.Println("health: ok")

	resp, err = client.Get(base + "/devices")
	if err != nil {
		log.Fatalf("list devices failed: %v", err)
	}
	defer resp.Body.Close()

	var devices []string
	if err := json.NewDecoder(resp.Body).Decode(&devices); err != nil {
		log.Fatalf("decode devices: %v", err)
	}

	fmt.Printf("devices: %d\n", len(devices))
	for _, d := range devices {
		fmt.Println(" -", d)
	}
}
