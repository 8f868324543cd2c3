package natsconn

import (
	"testing"
	"time"
)

func TestEnvInt_Default(t *testing.T) {
	v := envInt("NATSCONN_TEST_NONEXISTENT", 42)
	if v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}
}

func TestEnvInt_Invalid(t *testing.T) {
	t.Setenv("NATSCONN_TEST_INT", "-3")
	v := envInt("NATSCONN_TEST_INT", 42)
	if v != 42 {
		t.Fatalf("expected fallback 42 for negative value, got %d", v)
	}
}

func TestEnvDuration_Set(t *testing.T) {
	t.Setenv("NATSCONN_TEST_DUR", "3s")
	v := envDuration("NATSCONN_TEST_DUR", 5*time.Second)
	if v != 3*time.Second {
		t.Fatalf("expected 3s, got %s", v)
	}
}

func TestEnabled(t *testing.T) {
	t.Setenv("NATS_URL", "")
	if Enabled("") {
		t.Fatal("expected disabled without URL")
	}
	if !Enabled("nats://localhost:4222") {
		t.Fatal("expected enabled with explicit URL")
	}
	t.Setenv("NATS_URL", "nats://nats:4222")
	if !Enabled("") {
		t.Fatal("expected enabled via NATS_URL")
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(Options{
		URL:           "nats://127.0.0.1:19999",
		Name:          "movie-batch-test",
		MaxReconnects: 0,
		ReconnectWait: 10 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error connecting to invalid NATS URL")
	}
}
