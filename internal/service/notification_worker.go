package service

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/rajpuc/GoalGrid/internal/repository"
	"github.com/rajpuc/GoalGrid/internal/util"
)

// NotificationWorker consumes notification messages from RabbitMQ and
// persists them so users can read them through the notification endpoints.
type NotificationWorker struct {
	rabbitmq         *util.RabbitMQClient
	notificationRepo repository.NotificationRepository
	stopChan         chan struct{}
}

func NewNotificationWorker(
	rabbitmq *util.RabbitMQClient,
	notificationRepo repository.NotificationRepository,
) *NotificationWorker {
	return &NotificationWorker{
		rabbitmq:         rabbitmq,
		notificationRepo: notificationRepo,
		stopChan:         make(chan struct{}),
	}
}

// Start declares the queue, binds it to the exchange and consumes messages
// until Stop is called. Run it in its own goroutine.
func (w *NotificationWorker) Start() error {
	channel := w.rabbitmq.GetChannel()

	if err := channel.ExchangeDeclare(
		NotificationExchange,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(
		NotificationQueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.QueueBind(
		queue.Name,
		NotificationRoutingKey,
		NotificationExchange,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	messages, err := channel.Consume(
		queue.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	log.Println("Notification worker started")

	for {
		select {
		case <-w.stopChan:
			log.Println("Notification worker stopped")
			return nil
		case delivery, ok := <-messages:
			if !ok {
				return fmt.Errorf("notification consumer channel closed")
			}

			var msg NotificationMessage
			if err := json.Unmarshal(delivery.Body, &msg); err != nil {
				log.Printf("Discarding malformed notification message: %v", err)
				delivery.Nack(false, false)
				continue
			}

			if err := persistNotificationMessage(w.notificationRepo, &msg); err != nil {
				log.Printf("Failed to persist notification: %v", err)
				delivery.Nack(false, true)
				continue
			}

			delivery.Ack(false)
		}
	}
}

// Stop signals the worker loop to exit.
func (w *NotificationWorker) Stop() {
	close(w.stopChan)
}
