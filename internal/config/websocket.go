package config

import (
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader websocket.Upgrader
	// TickInterval paces the timer updates pushed to live games.
	TickInterval time.Duration
}

func NewWebSocket() (*WebSocket, error) {
	tick := time.Second
	if s, ok := os.LookupEnv("WS_TICK_INTERVAL"); ok {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid WS_TICK_INTERVAL %q", s)
		}
		tick = d
	}

	var origins []string
	if s := os.Getenv("WS_ALLOWED_ORIGINS"); s != "" {
		origins = strings.Split(s, ",")
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(origins) == 0 {
				return true
			}
			return slices.Contains(origins, r.Header.Get("Origin"))
		},
	}

	ws := &WebSocket{
		Upgrader:     upgrader,
		TickInterval: tick,
	}

	return ws, nil
}
