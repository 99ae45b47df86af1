package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher emits every lifecycle event on the equipment's topic so yard telemetry
// and dashboards can follow machine hand-overs.
type MQTTPublisher struct {
	client mqttPublisher
	prefix string
	qos    byte
}

type mqttPayload struct {
	Event       EventType `json:"event"`
	RentalID    int32     `json:"rental_id"`
	EquipmentID int32     `json:"equipment_id"`
	FarmerID    int32     `json:"farmer_id"`
	Status      string    `json:"status"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewMQTTPublisher(broker, clientID, prefix string, qos byte, connectTimeout time.Duration) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &MQTTPublisher{client: client, prefix: prefix, qos: qos}, nil
}

func (m *MQTTPublisher) Topic(equipmentID int32) string {
	return fmt.Sprintf("%s/equipment/%d/rental", m.prefix, equipmentID)
}

func (m *MQTTPublisher) Name() string { return "mqtt" }

func (m *MQTTPublisher) Notify(ctx context.Context, ev Event) error {
	rt := ev.Request
	payload, err := json.Marshal(mqttPayload{
		Event:       ev.Type,
		RentalID:    rt.ID,
		EquipmentID: rt.EquipmentID,
		FarmerID:    rt.FarmerID,
		Status:      string(rt.Status),
		StartDate:   rt.StartDate.String(),
		EndDate:     rt.EndDate.String(),
		OccurredAt:  ev.OccurredAt,
	})
	if err != nil {
		return err
	}

	token := m.client.Publish(m.Topic(rt.EquipmentID), m.qos, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return fmt.Errorf("mqtt publish: %w", ctx.Err())
	}
}
