package kafka

import (
	"strings"

	"github.com/IBM/sarama"
)

type Config struct {
	Brokers          string `envconfig:"BROKERS"` // "broker1:9092,broker2:9092"; пусто - Kafka выключена
	Topic            string `envconfig:"TOPIC" default:"registrations"`
	ConsumerGroup    string `envconfig:"CONSUMER_GROUP"`    // только для consumer
	SecurityProtocol string `envconfig:"SECURITY_PROTOCOL"` // "SASL_SSL", "SASL_PLAINTEXT", "PLAINTEXT"
	SASLMechanism    string `envconfig:"SASL_MECHANISM"`    // "PLAIN", "SCRAM-SHA-256"
	SASLUsername     string `envconfig:"SASL_USERNAME"`
	SASLPassword     string `envconfig:"SASL_PASSWORD"`
}

func (c *Config) Enabled() bool {
	return c != nil && len(c.GetBrokers()) > 0
}

func (c *Config) GetBrokers() []string {
	brokers := make([]string, 0)
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Sarama общие для producer и consumer настройки подключения
func (c *Config) Sarama() *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = "organic-shop"

	if c.SecurityProtocol == "SASL_SSL" || c.SecurityProtocol == "SASL_PLAINTEXT" {
		config.Net.SASL.Enable = true
		config.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		if c.SASLMechanism == "SCRAM-SHA-256" {
			config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		}
		config.Net.SASL.User = c.SASLUsername
		config.Net.SASL.Password = c.SASLPassword
		config.Net.TLS.Enable = c.SecurityProtocol == "SASL_SSL"
	}

	return config
}
