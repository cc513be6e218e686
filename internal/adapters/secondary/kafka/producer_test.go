package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/admin/tg-bots/organic-shop/internal/pkg/logger"
)

func TestProducer_SendUsesKeyAndTopic(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "registrations" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "42" {
			return errors.New("unexpected key " + string(key))
		}
		return nil
	})

	p := NewProducerFrom(mock, "registrations", logger.Discard())
	if err := p.Send(context.Background(), "42", []byte(`{"external_id":42}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestProducer_SendFailureIsWrapped(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewProducerFrom(mock, "registrations", logger.Discard())
	err := p.Send(context.Background(), "42", []byte(`{}`))
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected ErrOutOfBrokers, got %v", err)
	}
	_ = p.Close()
}

func TestConfig_GetBrokers(t *testing.T) {
	cfg := &Config{Brokers: " a:9092, ,b:9092"}
	brokers := cfg.GetBrokers()
	if len(brokers) != 2 || brokers[0] != "a:9092" || brokers[1] != "b:9092" {
		t.Errorf("unexpected brokers %v", brokers)
	}
	if !cfg.Enabled() {
		t.Errorf("config with brokers must be enabled")
	}
	if (&Config{Brokers: " , "}).Enabled() {
		t.Errorf("config without brokers must be disabled")
	}
}
