package chat

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBroadcaster(t *testing.T) {
	Convey("Given a broadcaster with two subscribers", t, func() {
		b := NewBroadcaster()
		id1, ch1 := b.Subscribe()
		id2, ch2 := b.Subscribe()
		So(b.SubscriberCount(), ShouldEqual, 2)

		Convey("When a message is published", func() {
			msg := MessageView{ID: 1, UserID: 1, Username: "alice", Content: "hola"}
			b.Publish(msg)

			Convey("Then both subscribers receive it", func() {
				So(<-ch1, ShouldResemble, msg)
				So(<-ch2, ShouldResemble, msg)
			})
		})

		Convey("When one subscriber unsubscribes", func() {
			b.Unsubscribe(id1)

			Convey("Then its channel is closed and the other keeps receiving", func() {
				_, open := <-ch1
				So(open, ShouldBeFalse)

				b.Publish(MessageView{ID: 2, Username: "bob", Content: "adios"})
				got := <-ch2
				So(got.ID, ShouldEqual, 2)
				So(b.SubscriberCount(), ShouldEqual, 1)
			})
		})

		Convey("When unsubscribing twice", func() {
			b.Unsubscribe(id2)

			Convey("Then the second call is a no-op", func() {
				So(func() { b.Unsubscribe(id2) }, ShouldNotPanic)
				So(b.SubscriberCount(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a subscriber that never drains its channel", t, func() {
		b := NewBroadcaster()
		_, slow := b.Subscribe()

		Convey("When more messages than the buffer size are published", func() {
			for i := 0; i < subscriberBuffer+10; i++ {
				b.Publish(MessageView{ID: i})
			}

			Convey("Then the excess is dropped and the buffer holds the first messages", func() {
				So(len(slow), ShouldEqual, subscriberBuffer)
				first := <-slow
				So(first.ID, ShouldEqual, 0)
			})
		})
	})
}

func TestBroadcasterConcurrency(t *testing.T) {
	Convey("Given concurrent publishers and subscribers", t, func() {
		b := NewBroadcaster()

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, ch := b.Subscribe()
				// Drain a little, then go away mid-stream.
				timeout := time.After(50 * time.Millisecond)
				for {
					select {
					case <-ch:
					case <-timeout:
						b.Unsubscribe(id)
						return
					}
				}
			}()
		}
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					b.Publish(MessageView{ID: n*100 + j})
				}
			}(i)
		}

		wg.Wait()

		Convey("Then all subscribers are gone and nothing deadlocked", func() {
			So(b.SubscriberCount(), ShouldEqual, 0)
		})
	})
}
