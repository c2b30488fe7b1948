package lib

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

func GetKafkaProducerConfig(broker string, clientId string) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers": broker,
		"client.id":         clientId,
		"acks":              "all",
	}
}

// KafkaProduceMessage publishes payload as JSON and waits for the delivery report.
func KafkaProduceMessage(broker string, clientId string, topic string, payload map[string]any) error {
	if broker == "" {
		return errors.New("KAFKA_BROKER is not set")
	}
	p, err := kafka.NewProducer(GetKafkaProducerConfig(broker, clientId))
	if err != nil {
		log.Printf("[kafka] Error creating producer: %s\n", err.Error())
		return err
	}
	defer p.Close()

	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	delivery := make(chan kafka.Event, 1)
	err = p.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          value,
	}, delivery)
	if err != nil {
		log.Printf("[kafka] Error producing message: %s\n", err.Error())
		return err
	}
	e := <-delivery
	m, ok := e.(*kafka.Message)
	if !ok {
		return fmt.Errorf("unexpected kafka event: %v", e)
	}
	if m.TopicPartition.Error != nil {
		return m.TopicPartition.Error
	}
	return nil
}
