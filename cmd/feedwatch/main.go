// Command feedwatch opens many live-feed connections to one post and reports
// how many events each watcher received.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

type feedEvent struct {
	Type    string          `json:"type"`
	PostID  uint            `json:"post"`
	Payload json.RawMessage `json:"payload"`
}

type stats struct {
	attempted atomic.Int64
	connected atomic.Int64
	failed    atomic.Int64
	received  atomic.Int64
	malformed atomic.Int64

	mu     sync.Mutex
	byType map[string]int64
}

func (s *stats) record(eventType string) {
	s.received.Add(1)
	s.mu.Lock()
	s.byType[eventType]++
	s.mu.Unlock()
}

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	slug := flag.String("slug", "", "Slug of the post to watch")
	watchers := flag.Int("watchers", 20, "Number of concurrent connections")
	duration := flag.Duration("duration", 30*time.Second, "How long to watch")
	verbose := flag.Bool("v", false, "Print every event of the first watcher")
	flag.Parse()

	if *slug == "" {
		log.Fatal("usage: feedwatch -slug <post-slug> [-host host:port] [-watchers n] [-duration 30s]")
	}

	u := url.URL{Scheme: "ws", Host: *host, Path: "/api/ws/posts/" + *slug}
	log.Printf("watching %s with %d connections for %v", u.String(), *watchers, *duration)

	st := &stats{byType: make(map[string]int64)}
	stop := make(chan struct{})
	var wg sync.WaitGroup

	for i := range *watchers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			watch(u.String(), st, stop, *verbose && i == 0)
		}()
		time.Sleep(20 * time.Millisecond)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	select {
	case <-time.After(*duration):
	case <-interrupt:
		log.Println("interrupted")
	}

	close(stop)
	wg.Wait()
	report(st)
}

func watch(target string, st *stats, stop <-chan struct{}, verbose bool) {
	st.attempted.Add(1)

	conn, resp, err := websocket.DefaultDialer.Dial(target, nil)
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		st.failed.Add(1)
		if resp != nil {
			log.Printf("dial failed: %v (status %d)", err, resp.StatusCode)
		} else {
			log.Printf("dial failed: %v", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()
	st.connected.Add(1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var ev feedEvent
			if err := json.Unmarshal(data, &ev); err != nil || ev.Type == "" {
				st.malformed.Add(1)
				continue
			}
			st.record(ev.Type)
			if verbose {
				log.Printf("%s post=%d %s", ev.Type, ev.PostID, ev.Payload)
			}
		}
	}()

	select {
	case <-stop:
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	case <-done:
	}
}

func report(st *stats) {
	log.Println("results")
	log.Printf("  connections attempted: %d", st.attempted.Load())
	log.Printf("  connections open:      %d", st.connected.Load())
	log.Printf("  connections failed:    %d", st.failed.Load())
	log.Printf("  events received:       %d", st.received.Load())
	log.Printf("  malformed frames:      %d", st.malformed.Load())

	st.mu.Lock()
	defer st.mu.Unlock()
	for eventType, n := range st.byType {
		log.Printf("  %-18s %d", eventType, n)
	}
}
