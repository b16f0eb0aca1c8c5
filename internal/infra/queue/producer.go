package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AssignedPayload is the event emitted after an assignment commits. The
// notification worker turns it into a mail to the receiving teacher.
type AssignedPayload struct {
	LeadIDs      []int64   `json:"lead_ids"`
	LeadName     string    `json:"lead_name,omitempty"`
	TeacherID    int64     `json:"teacher_id"`
	TeacherName  string    `json:"teacher_name"`
	TeacherEmail string    `json:"teacher_email,omitempty"`
	Remark       string    `json:"remark,omitempty"`
	AssignedAt   time.Time `json:"assigned_at"`
}

type Producer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *Producer {
	return &Producer{Conn: conn, Ch: ch}
}

func (p *Producer) PublishAssigned(ctx context.Context, payload AssignedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal assignment payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish assignment event: %w", err)
	}
	return nil
}
