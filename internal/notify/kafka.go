package notify

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/domain"
)

// KafkaNotifier publishes one confirmation message per submitted order.
// A downstream consumer renders and delivers the actual email. With no
// brokers configured the notifier degrades to a log line, so local
// development works without Kafka.
type KafkaNotifier struct {
	writer *kafka.Writer
	logger *log.Logger
}

func NewKafkaNotifier(brokersCSV, topic string, logger *log.Logger) *KafkaNotifier {
	if logger == nil {
		logger = log.Default()
	}
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	n := &KafkaNotifier{logger: logger}
	if len(brokers) > 0 {
		n.writer = &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		}
	}
	return n
}

func (n *KafkaNotifier) Enabled() bool {
	return n.writer != nil
}

type confirmationMessage struct {
	EventID             string    `json:"event_id"`
	PrimaryEmail        string    `json:"primary_email"`
	RegistrationNumbers []string  `json:"registration_numbers"`
	Total               string    `json:"total"`
	SentAt              time.Time `json:"sent_at"`
}

func (n *KafkaNotifier) SendConfirmation(ctx context.Context, batch domain.ConfirmationBatch) error {
	msg := confirmationMessage{
		EventID:             batch.EventID,
		PrimaryEmail:        batch.PrimaryEmail,
		RegistrationNumbers: batch.RegistrationNumbers,
		Total:               batch.Total,
		SentAt:              batch.SentAt,
	}
	if n.writer == nil {
		n.logger.Printf("confirmation (kafka disabled) email=%s numbers=%v", batch.PrimaryEmail, batch.RegistrationNumbers)
		return nil
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	// Key by email so retries for the same buyer land on one partition.
	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(batch.PrimaryEmail),
		Value: data,
		Time:  batch.SentAt,
	})
}

func (n *KafkaNotifier) Close() error {
	if n.writer == nil {
		return nil
	}
	return n.writer.Close()
}
