package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// Notifier публикует события подписок в обменник notifications.
type Notifier struct {
	ch *amqp.Channel
}

// NewNotifier создает Notifier поверх открытого канала.
func NewNotifier(ch *amqp.Channel) *Notifier {
	return &Notifier{ch: ch}
}

// Publish сериализует событие в JSON и отправляет его с заданным
// ключом маршрутизации. Сообщения помечаются persistent, чтобы
// переживать перезапуск брокера.
func (n *Notifier) Publish(routingKey string, event any) error {
	const op = "rabbitmq.Notifier.Publish"

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = n.ch.Publish("notifications", routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
