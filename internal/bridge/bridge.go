// Package bridge ingests readings published over MQTT. Field devices
// that cannot speak HTTP push JSON SensorReading payloads to a broker;
// the bridge appends them through the same record path as POST /sensors,
// so stored readings are indistinguishable by origin. Broker credentials
// stand in for the client secret on this path.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"sensewire/internal/logging"
	"sensewire/internal/server"
	"sensewire/internal/shared"
)

type Options struct {
	BrokerURL string
	ClientID  string
	Topic     string // subscription filter, e.g. "sensors/+/readings"
}

type Service struct {
	client mqtt.Client
	opts   Options
	store  server.Store
	stream server.Broadcaster // may be nil

	log *slog.Logger
}

// New connects to the broker. Connection retries are left to paho so a
// broker restart does not take the bridge down with it.
func New(opts Options, store server.Store, stream server.Broadcaster) (*Service, error) {
	if opts.ClientID == "" {
		opts.ClientID = fmt.Sprintf("sensewire-bridge-%d", time.Now().UnixNano())
	}

	o := mqtt.NewClientOptions()
	o.AddBroker(opts.BrokerURL)
	o.SetClientID(opts.ClientID)
	o.SetConnectRetry(true)
	o.SetConnectRetryInterval(2 * time.Second)

	c := mqtt.NewClient(o)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", opts.BrokerURL, token.Error())
	}

	return &Service{
		client: c,
		opts:   opts,
		store:  store,
		stream: stream,
		log:    logging.Component("bridge"),
	}, nil
}

// Run subscribes and blocks until ctx is cancelled, then disconnects.
func (s *Service) Run(ctx context.Context) error {
	if token := s.client.Subscribe(s.opts.Topic, 1, s.handle); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", s.opts.Topic, token.Error())
	}
	s.log.Info("subscribed", "topic", s.opts.Topic, "broker", s.opts.BrokerURL)

	<-ctx.Done()
	s.client.Disconnect(250)
	return nil
}

// handle stores one published reading. Bad payloads are dropped, never
// stored; the broker gives no way to answer the sender anyway.
func (s *Service) handle(_ mqtt.Client, msg mqtt.Message) {
	var r shared.SensorReading
	if err := json.Unmarshal(msg.Payload(), &r); err != nil {
		s.log.Warn("dropping unparseable payload", "topic", msg.Topic(), "error", err)
		return
	}
	if r.DeviceID == "" {
		s.log.Warn("dropping payload without device_id", "topic", msg.Topic())
		return
	}

	rec := shared.NewStoredReading(r)
	if err := s.store.AppendReading(rec); err != nil {
		s.log.Error("append failed", "device_id", rec.DeviceID, "error", err)
		return
	}
	if s.stream != nil {
		s.stream.Broadcast(rec)
	}
	s.log.Debug("stored reading", "device_id", rec.DeviceID, "id", rec.ID)
}
