// Package server implements the Sensewire HTTP API surface.
//
// Owns:
//   - HTTP routing, handlers, and request/response contracts
//   - The client-secret gate on ingestion (RequireClientSecret)
//   - The read path: filter -> sort -> suffix-limit -> annotate
//   - Store implementations (memory and sqlite) behind the Store contract
//
// Does not own:
//   - Record identity and timestamp assignment (shared.NewStoredReading)
//   - MQTT ingestion (internal/bridge) and live streaming (internal/stream)
//
// Invariants:
//   - JSON responses go through writeJSON; errors are {"error": ...}
//   - Stored readings are append-only and never mutated
//   - DeviceReadings hands out snapshots, never live store slices
package server
