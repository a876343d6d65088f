package config

import "os"

// Config captures everything main needs to wire the service. Values come
// from the environment so main stays lean.
type Config struct {
	Addr string

	// PostgresURL selects the durable registration store; empty keeps the
	// in-memory store.
	PostgresURL string
	// RedisURL selects the shared rate-limit store; empty keeps the
	// in-memory store.
	RedisURL string
	// KafkaBrokers is a comma-separated broker list for the audit sink;
	// empty disables Kafka publishing.
	KafkaBrokers string

	// RegistrationURL is where unregistered SMS senders are pointed.
	RegistrationURL string

	ConsentMessage     string
	RedirectMessage    string
	WrongNumberMessage string
}

// FromEnv builds a Config from environment variables with development
// defaults.
func FromEnv() Config {
	return Config{
		Addr:            envOr("HAMPUFF_ADDR", ":15015"),
		PostgresURL:     os.Getenv("POSTGRES_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		KafkaBrokers:    os.Getenv("KAFKA_BROKERS"),
		RegistrationURL: envOr("REGISTRATION_URL", "https://hampuff.com/register"),
		ConsentMessage: envOr("CONSENT_MESSAGE",
			"Your SMS request provides consent to send the reply."),
		RedirectMessage: envOr("REDIRECT_MESSAGE",
			"Wrong number. That might be an airport so please text Airpuff at sms://+1-802-247-7833 / [802-AIR-PUFF]"),
		WrongNumberMessage: envOr("WRONG_NUMBER_MESSAGE",
			"Wrong number. Please waste someone else's time."),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
