package queue

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AssignmentMailer is the contract the worker needs from the mail layer.
type AssignmentMailer interface {
	SendAssignment(to, teacherName string, leadCount int, remark string) error
}

// Worker consumes lead-assigned events and notifies the receiving teacher.
type Worker struct {
	Channel *amqp.Channel
	Mailer  AssignmentMailer
}

func NewWorker(ch *amqp.Channel, mailer AssignmentMailer) *Worker {
	return &Worker{Channel: ch, Mailer: mailer}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		log.Fatalf("[WORKER] consumer registration failed: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload AssignedPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("[WORKER] malformed payload, dead-lettering: %s", err)
				// malformed message, reject without requeue so the queue keeps moving
				d.Nack(false, false)
				continue
			}

			if err := w.process(payload); err != nil {
				log.Printf("[WORKER] notification failed for teacher %d: %s", payload.TeacherID, err)
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf("[WORKER] waiting on queue %q", queueName)
	<-forever
}

func (w *Worker) process(payload AssignedPayload) error {
	if payload.TeacherEmail == "" {
		// teacher has no mailbox on file; nothing to send
		log.Printf("[WORKER] teacher %d has no email, skipping notification", payload.TeacherID)
		return nil
	}
	return w.Mailer.SendAssignment(payload.TeacherEmail, payload.TeacherName, len(payload.LeadIDs), payload.Remark)
}
