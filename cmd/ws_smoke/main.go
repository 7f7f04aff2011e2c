package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

// Subscribes to the refresh feed, creates a task over REST and waits for
// the tasks_changed event. Needs a running server.
func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	owner := "smoke-" + time.Now().Format("150405")

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := "127.0.0.1:" + port
	wsURL := fmt.Sprintf("ws://%s/ws?owner=%s", base, url.QueryEscape(owner))

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitFor := func(want string) {
		deadline := time.Now().Add(3 * time.Second)
		for time.Now().Before(deadline) {
			conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				continue
			}
			var obj map[string]any
			_ = json.Unmarshal(msg, &obj)
			if t, ok := obj["type"].(string); ok && t == want {
				log.Printf("got: %s", string(msg))
				return
			}
		}
		log.Fatalf("no %q event within deadline", want)
	}

	waitFor("ready")

	body, _ := json.Marshal(map[string]string{"owner": owner, "title": "smoke test task"})
	resp, err := http.Post("http://"+base+"/tasks", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("create task: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		log.Fatalf("create task: status %d", resp.StatusCode)
	}

	waitFor("tasks_changed")
	log.Println("smoke test finished")
}
