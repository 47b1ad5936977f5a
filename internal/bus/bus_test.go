package bus

import (
	"log/slog"
	"testing"
	"time"

	"vinobot/internal/domain"
)

func TestPublishSubscribe(t *testing.T) {
	b := New(10, slog.Default())
	defer b.Close()

	b.Publish(domain.InboundMessage{Channel: "telegram", SenderID: "42", Content: "привет"})

	select {
	case msg := <-b.Subscribe():
		if msg.SenderID != "42" || msg.Content != "привет" {
			t.Fatalf("unexpected message: %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("message never arrived")
	}
}

func TestSendOutbound_RoutesToRegisteredHandler(t *testing.T) {
	b := New(10, slog.Default())
	defer b.Close()

	got := make(chan domain.OutboundMessage, 1)
	b.OnOutbound("telegram", func(msg domain.OutboundMessage) { got <- msg })

	b.SendOutbound(domain.OutboundMessage{Channel: "telegram", ChatID: "42", Content: "ответ"})

	select {
	case msg := <-got:
		if msg.ChatID != "42" {
			t.Fatalf("unexpected recipient: %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("handler never invoked")
	}
}

func TestSendOutbound_NoHandlerIsDropped(t *testing.T) {
	b := New(10, slog.Default())
	defer b.Close()

	// Must not panic or block.
	b.SendOutbound(domain.OutboundMessage{Channel: "cli", Content: "x"})
}

func TestPublish_AfterCloseIsNoop(t *testing.T) {
	b := New(10, slog.Default())
	b.Close()

	b.Publish(domain.InboundMessage{Channel: "telegram", Content: "поздно"})

	if _, ok := <-b.Subscribe(); ok {
		t.Fatal("closed bus must not deliver messages")
	}
}

func TestClose_Idempotent(t *testing.T) {
	b := New(10, slog.Default())
	b.Close()
	b.Close()
}

func TestPublish_PreservesOrder(t *testing.T) {
	b := New(10, slog.Default())
	defer b.Close()

	for _, c := range []string{"один", "два", "три"} {
		b.Publish(domain.InboundMessage{Channel: "cli", Content: c})
	}

	for _, want := range []string{"один", "два", "три"} {
		select {
		case msg := <-b.Subscribe():
			if msg.Content != want {
				t.Fatalf("expected %q, got %q", want, msg.Content)
			}
		case <-time.After(time.Second):
			t.Fatal("message never arrived")
		}
	}
}
