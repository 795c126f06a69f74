package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	skafka "github.com/segmentio/kafka-go"
)

// fakeWriter is a test writer that records messages written.
type fakeWriter struct {
	msgs []skafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...skafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublish(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaProducerWithWriter(fw, nil)
	err := p.Publish(context.Background(), "acc_1", map[string]string{"action": "MEMBER_INVITED"})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(fw.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fw.msgs))
	}
	if string(fw.msgs[0].Key) != "acc_1" {
		t.Errorf("expected key acc_1, got %q", fw.msgs[0].Key)
	}
	var got map[string]string
	if err := json.Unmarshal(fw.msgs[0].Value, &got); err != nil {
		t.Fatalf("value is not json: %v", err)
	}
	if got["action"] != "MEMBER_INVITED" {
		t.Errorf("unexpected value %v", got)
	}
}

func TestPublish_WriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewKafkaProducerWithWriter(&fakeWriter{err: boom}, nil)
	err := p.Publish(context.Background(), "k", "v")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped writer error, got %v", err)
	}
}

func TestPublish_MarshalError(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaProducerWithWriter(fw, nil)
	if err := p.Publish(context.Background(), "k", make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}
	if len(fw.msgs) != 0 {
		t.Fatalf("nothing should be written, got %d", len(fw.msgs))
	}
}
