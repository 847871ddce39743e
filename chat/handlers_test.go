package chat

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"
)

// readDataLine consumes SSE lines until a data line arrives, or gives up
// after the deadline.
func readDataLine(lines <-chan string, deadline time.Duration) (string, bool) {
	timeout := time.After(deadline)
	for {
		select {
		case line, open := <-lines:
			if !open {
				return "", false
			}
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimPrefix(line, "data: "), true
			}
		case <-timeout:
			return "", false
		}
	}
}

func TestStreamOutlivesRequestTimeout(t *testing.T) {
	Convey("Given chat routes whose non-streaming group has a short request timeout", t, func() {
		broadcaster := NewBroadcaster()
		service := NewChatService(nil, broadcaster)
		handlers := NewChatHandlers(service, 50)
		handlers.requestTimeout = 50 * time.Millisecond

		router := chi.NewRouter()
		router.Route("/chat", func(r chi.Router) {
			handlers.RegisterRoutes(r)
		})
		server := httptest.NewServer(router)
		defer server.Close()

		resp, err := http.Get(server.URL + "/chat/stream")
		So(err, ShouldBeNil)
		defer resp.Body.Close()
		So(resp.Header.Get("Content-Type"), ShouldEqual, "text/event-stream")

		lines := make(chan string)
		go func() {
			defer close(lines)
			scanner := bufio.NewScanner(resp.Body)
			for scanner.Scan() {
				lines <- scanner.Text()
			}
		}()

		// Wait until the handler goroutine has registered its subscriber.
		for i := 0; i < 100 && broadcaster.SubscriberCount() == 0; i++ {
			time.Sleep(5 * time.Millisecond)
		}
		So(broadcaster.SubscriberCount(), ShouldEqual, 1)

		Convey("When messages are published before and well after the timeout window", func() {
			broadcaster.Publish(MessageView{ID: 1, Username: "alice", Content: "hola"})
			first, ok := readDataLine(lines, 2*time.Second)
			So(ok, ShouldBeTrue)
			So(first, ShouldContainSubstring, `"id":1`)

			time.Sleep(3 * handlers.requestTimeout)

			broadcaster.Publish(MessageView{ID: 2, Username: "bob", Content: "sigo aqui"})
			second, ok := readDataLine(lines, 2*time.Second)

			Convey("Then the stream is still connected and delivers the late message", func() {
				So(ok, ShouldBeTrue)
				So(second, ShouldContainSubstring, `"id":2`)
				So(broadcaster.SubscriberCount(), ShouldEqual, 1)
			})
		})
	})
}
