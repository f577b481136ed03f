package events_test

import (
	"testing"
	"time"

	"github.com/keep-on-walking/headless-mpv/internal/events"
	"github.com/keep-on-walking/headless-mpv/internal/models"
)

func TestPublishReachesSubscribers(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("a")
	defer bus.Unsubscribe("a")

	bus.Publish(models.Status{State: models.StatePlaying, CurrentFile: "a.mp4"})

	select {
	case st := <-ch:
		if st.State != models.StatePlaying || st.CurrentFile != "a.mp4" {
			t.Errorf("received %+v", st)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("a")
	bus.Unsubscribe("a")

	if _, ok := <-ch; ok {
		t.Error("channel not closed after Unsubscribe")
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount = %d, want 0", bus.SubscriberCount())
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := events.NewBus()
	bus.Subscribe("slow") // never consumed
	defer bus.Unsubscribe("slow")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(models.Status{State: models.StateStopped})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}
