package events_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Events(t *testing.T) {
	t.Log("Given the need to send events to registered receivers.")
	{
		evts := events.New()

		testID := 0
		t.Logf("\tTest %d:\tWhen two receivers are registered.", testID)
		{
			ch1 := evts.Acquire("one")
			ch2 := evts.Acquire("two")

			if evts.Acquire("one") != ch1 || evts.Count() != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould get back the same channel for the same id.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get back the same channel for the same id.", success, testID)

			evts.Send("block mined")

			if msg := <-ch1; msg != "block mined" {
				t.Fatalf("\t%s\tTest %d:\tShould receive the event on the first channel, got %q.", failed, testID, msg)
			}
			if msg := <-ch2; msg != "block mined" {
				t.Fatalf("\t%s\tTest %d:\tShould receive the event on the second channel, got %q.", failed, testID, msg)
			}
			t.Logf("\t%s\tTest %d:\tShould receive the event on both channels.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a receiver is released.", testID)
		{
			ch := evts.Acquire("one")
			if err := evts.Release("one"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to release: %v", failed, testID, err)
			}

			if _, open := <-ch; open {
				t.Fatalf("\t%s\tTest %d:\tShould have a closed channel.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have a closed channel.", success, testID)

			if err := evts.Release("one"); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould not be able to release twice.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not be able to release twice.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a receiver falls behind.", testID)
		{
			for j := 0; j < 150; j++ {
				evts.Send("tx")
			}

			if evts.Dropped() != 50 {
				t.Fatalf("\t%s\tTest %d:\tShould drop 50 messages, got %d.", failed, testID, evts.Dropped())
			}
			t.Logf("\t%s\tTest %d:\tShould drop the messages that don't fit.", success, testID)

			evts.Shutdown()
			if evts.Count() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have no receivers after shutdown.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have no receivers after shutdown.", success, testID)
		}
	}
}
