package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telemetry_bridge/internal/config"
	"telemetry_bridge/internal/hub"
	"telemetry_bridge/internal/logger"
	"telemetry_bridge/internal/protocol"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	publishTimeout = 5 * time.Second
	quiesceMillis  = 250
	qosAtMostOnce  = 0

	topicTelemetry = "telemetry"
	topicSerial    = "serial"
)

// Client is the part of paho.Client the mirror uses.
type Client interface {
	Connect() paho.Token
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// NewClient builds an auto-reconnecting paho client. It does not connect.
func NewClient(cfg config.MQTTConfig, log *logger.Logger) paho.Client {
	if log == nil {
		log = logger.Nop()
	}
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ paho.Client) {
		log.Infow("mqtt_connected", "broker", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Warnw("mqtt_connection_lost", "broker", cfg.Broker, "err", err)
	})
	return paho.NewClient(opts)
}

// Mirror republishes hub traffic to MQTT: sensor_update to <prefix>/telemetry
// and serial_line to <prefix>/serial. It is an ordinary hub session, so a
// slow broker only drops mirror events.
type Mirror struct {
	client Client
	hub    *hub.Hub
	prefix string
	log    *logger.Logger
}

func NewMirror(client Client, h *hub.Hub, prefix string, log *logger.Logger) *Mirror {
	if log == nil {
		log = logger.Nop()
	}
	return &Mirror{client: client, hub: h, prefix: prefix, log: log}
}

// Run forwards events until ctx is cancelled, then disconnects.
func (m *Mirror) Run(ctx context.Context) {
	sess := m.hub.Register(hub.Internal())
	defer m.hub.Unregister(sess)
	defer m.client.Disconnect(quiesceMillis)

	// with connect-retry the token completes only once connected
	go func(tok paho.Token) {
		select {
		case <-tok.Done():
			if err := tok.Error(); err != nil {
				m.log.Errorw("mqtt_connect_failed", "err", err)
			}
		case <-ctx.Done():
		}
	}(m.client.Connect())

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sess.Events():
			if !ok {
				return
			}
			if err := m.publish(ev); err != nil {
				m.log.Warnw("mqtt_publish_failed", "type", ev.Type, "err", err)
			}
		}
	}
}

// topic maps a hub event to its MQTT topic; other events are not mirrored.
func (m *Mirror) topic(eventType string) (string, bool) {
	var leaf string
	switch eventType {
	case protocol.EventSensorUpdate:
		leaf = topicTelemetry
	case protocol.EventSerialLine:
		leaf = topicSerial
	default:
		return "", false
	}
	if m.prefix == "" {
		return leaf, true
	}
	return m.prefix + "/" + leaf, true
}

func (m *Mirror) publish(ev hub.Event) error {
	topic, ok := m.topic(ev.Type)
	if !ok {
		return nil
	}
	if !m.client.IsConnected() {
		m.log.Debugw("mqtt_publish_skipped", "topic", topic)
		return nil
	}
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}

	token := m.client.Publish(topic, qosAtMostOnce, false, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	m.log.Debugw("mqtt_published", "topic", topic)
	return nil
}
