package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultPublishTimeout = 5 * time.Second
	commandQoS            = 1
	payloadOn             = "ON"
	payloadOff            = "OFF"
)

var ErrPublishTimeout = errors.New("mqtt publish timeout")

// MQTTConfig holds broker settings for an MQTT relay board.
type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string // e.g. "irrigation/valves"
}

// publisher is the part of pahomqtt.Client used by MQTTBoard.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
}

// MQTTBoard drives a network relay board that listens on
// <prefix>/relay/<n>/set for ON / OFF, n being 1-based.
type MQTTBoard struct {
	client  publisher
	prefix  string
	timeout time.Duration
	closeFn func()
}

// ConnectMQTTBoard connects to the broker and waits for the session.
func ConnectMQTTBoard(cfg MQTTConfig) (*MQTTBoard, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "irrigation-controller"
	}
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	b := NewMQTTBoard(client, cfg.TopicPrefix)
	b.closeFn = func() { client.Disconnect(1000) }
	return b, nil
}

// NewMQTTBoard uses an existing client.
func NewMQTTBoard(client publisher, prefix string) *MQTTBoard {
	return &MQTTBoard{client: client, prefix: prefix, timeout: defaultPublishTimeout}
}

// CommandTopic returns the set topic of valve index.
func (b *MQTTBoard) CommandTopic(index int) string {
	return fmt.Sprintf("%s/relay/%d/set", b.prefix, index+1)
}

func (b *MQTTBoard) publish(ctx context.Context, index int, on bool) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	payload := payloadOff
	if on {
		payload = payloadOn
	}
	timeout := b.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	token := b.client.Publish(b.CommandTopic(index), commandQoS, false, payload)
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("%w: relay %d after %v", ErrPublishTimeout, index+1, timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish relay %d: %w", index+1, err)
	}
	return nil
}

func (b *MQTTBoard) Open(ctx context.Context, index int) error  { return b.publish(ctx, index, true) }
func (b *MQTTBoard) Close(ctx context.Context, index int) error { return b.publish(ctx, index, false) }
func (b *MQTTBoard) CloseAll(ctx context.Context) error         { return forEach(ctx, b.Close) }
func (b *MQTTBoard) OpenAll(ctx context.Context) error          { return forEach(ctx, b.Open) }

// Shutdown disconnects from the broker.
func (b *MQTTBoard) Shutdown() error {
	if b.closeFn != nil {
		b.closeFn()
	}
	return nil
}
