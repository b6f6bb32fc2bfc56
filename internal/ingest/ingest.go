// FilePath: internal/ingest/ingest.go

// Package ingest consumes tower-light messages from the MQTT broker
// and appends them to the reading log. Messages from unregistered or
// inactive devices are dropped; every accepted message also refreshes
// the device's liveness record.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/lumiguard/andonhub/internal/cache"
	"github.com/lumiguard/andonhub/internal/config"
	"github.com/lumiguard/andonhub/internal/errors"
	"github.com/lumiguard/andonhub/internal/liveness"
	"github.com/lumiguard/andonhub/internal/models"
	"github.com/lumiguard/andonhub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// sensorPayload is the wire shape published by the devices. The flag
// fields are pointers so that absent fields can be told apart from
// zero values.
type sensorPayload struct {
	MacAddress string `json:"mac_address"`
	Red        *int   `json:"red"`
	Amber      *int   `json:"amber"`
	Green      *int   `json:"green"`
}

// Consumer subscribes to the sensor and heartbeat topics.
type Consumer struct {
	cfg      config.MQTTConfig
	client   mqtt.Client
	readings repository.ReadingRepository
	devices  *cache.DeviceCache
	tracker  *liveness.Tracker
	now      func() time.Time
}

// New builds a Consumer. now may be nil, defaulting to time.Now; the
// reading timestamp is assigned at ingest, not taken from the device.
func New(cfg config.MQTTConfig, readings repository.ReadingRepository, devices *cache.DeviceCache, tracker *liveness.Tracker, now func() time.Time) *Consumer {
	if now == nil {
		now = time.Now
	}
	return &Consumer{
		cfg:      cfg,
		readings: readings,
		devices:  devices,
		tracker:  tracker,
		now:      now,
	}
}

// Start connects to the broker and subscribes to both topics.
func (c *Consumer) Start(ctx context.Context) error {
	clientID := fmt.Sprintf("%s_%d_%d", c.cfg.ClientIDPrefix, time.Now().UnixMilli(), rand.Intn(1000))

	opts := mqtt.NewClientOptions().
		AddBroker(c.cfg.BrokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			nuts.L.Errorf("[MQTT] Connection lost: %v", err)
		})
	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
		opts.SetPassword(c.cfg.Password)
	}

	c.client = mqtt.NewClient(opts)
	token := c.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return errors.NewUnavailableError("failed to connect to MQTT broker", err)
	}
	return nil
}

// Stop disconnects from the broker, allowing in-flight handlers a
// short grace period.
func (c *Consumer) Stop() {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
		nuts.L.Infof("[MQTT] Disconnected from broker")
	}
}

// onConnect (re)subscribes; paho drops subscriptions on reconnect
// unless session state is persisted.
func (c *Consumer) onConnect(client mqtt.Client) {
	nuts.L.Infof("[MQTT] Connected to broker %s", c.cfg.BrokerURL)

	if token := client.Subscribe(c.cfg.SensorTopic, c.cfg.QoS, c.handleSensor); token.Wait() && token.Error() != nil {
		nuts.L.Errorf("[MQTT] Failed to subscribe to sensor topic: %v", token.Error())
	} else {
		nuts.L.Infof("[MQTT] Subscribed to sensor topic %s", c.cfg.SensorTopic)
	}

	if token := client.Subscribe(c.cfg.HeartbeatTopic, c.cfg.QoS, c.handleHeartbeat); token.Wait() && token.Error() != nil {
		nuts.L.Errorf("[MQTT] Failed to subscribe to heartbeat topic: %v", token.Error())
	} else {
		nuts.L.Infof("[MQTT] Subscribed to heartbeat topic %s", c.cfg.HeartbeatTopic)
	}
}

func (c *Consumer) handleSensor(_ mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, device, ok := c.admit(ctx, msg.Payload())
	if !ok {
		return
	}

	if payload.Red == nil || payload.Amber == nil || payload.Green == nil {
		nuts.L.Warnf("[MQTT] Missing status fields from %s", payload.MacAddress)
		return
	}

	reading := &models.Reading{
		MacAddress: payload.MacAddress,
		DeviceName: device.DeviceName,
		Red:        *payload.Red != 0,
		Amber:      *payload.Amber != 0,
		Green:      *payload.Green != 0,
		Timestamp:  c.now(),
	}

	if err := c.readings.Insert(ctx, reading); err != nil {
		nuts.L.Errorf("[MQTT] Failed to store reading from %s: %v", payload.MacAddress, err)
		return
	}

	c.tracker.Touch(payload.MacAddress)
	nuts.L.Debugf("[MQTT] Reading %s | red=%v amber=%v green=%v",
		payload.MacAddress, reading.Red, reading.Amber, reading.Green)
}

func (c *Consumer) handleHeartbeat(_ mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, _, ok := c.admit(ctx, msg.Payload())
	if !ok {
		return
	}

	c.tracker.Touch(payload.MacAddress)
	nuts.L.Debugf("[MQTT] Heartbeat %s", payload.MacAddress)
}

// admit parses a payload and checks the device registry. Only
// registered, active devices get through.
func (c *Consumer) admit(ctx context.Context, raw []byte) (*sensorPayload, *models.Device, bool) {
	payload := &sensorPayload{}
	if err := json.Unmarshal(raw, payload); err != nil {
		nuts.L.Warnf("[MQTT] Unparseable message: %v", err)
		return nil, nil, false
	}
	if payload.MacAddress == "" {
		nuts.L.Warnf("[MQTT] Message missing mac_address")
		return nil, nil, false
	}

	device, err := c.devices.Get(ctx, payload.MacAddress)
	if err != nil {
		nuts.L.Warnf("[MQTT] Ignored %s: not registered", payload.MacAddress)
		return nil, nil, false
	}
	if !device.IsActive() {
		nuts.L.Warnf("[MQTT] Ignored %s: device inactive", payload.MacAddress)
		return nil, nil, false
	}
	return payload, device, true
}
