package bus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	defer b.Close()

	var got []Event
	sub := b.Subscribe("sim.step", func(e Event) { got = append(got, e) })
	require.NotEmpty(t, sub.ID())

	b.Publish(NewEvent("sim.step", "test", 1))
	b.Publish(NewEvent("sim.other", "test", 2))
	b.Publish(NewEvent("sim.step", "test", 3))

	require.Len(t, got, 2)
	require.Equal(t, 1, got[0].Data)
	require.Equal(t, 3, got[1].Data)
}

func TestCancel(t *testing.T) {
	b := New()
	defer b.Close()

	count := 0
	sub := b.Subscribe("sim.step", func(Event) { count++ })

	b.Publish(NewEvent("sim.step", "test", nil))
	sub.Cancel()
	b.Publish(NewEvent("sim.step", "test", nil))

	require.Equal(t, 1, count)
}

func TestMultipleSubscribers(t *testing.T) {
	b := New()
	defer b.Close()

	a, c := 0, 0
	b.Subscribe("sim.finished", func(Event) { a++ })
	b.Subscribe("sim.finished", func(Event) { c++ })

	b.Publish(NewEvent("sim.finished", "test", nil))
	require.Equal(t, 1, a)
	require.Equal(t, 1, c)
}

func TestClosedBusDropsSubscriptions(t *testing.T) {
	b := New()
	b.Close()

	count := 0
	b.Subscribe("sim.step", func(Event) { count++ })
	b.Publish(NewEvent("sim.step", "test", nil))
	require.Zero(t, count)
}
