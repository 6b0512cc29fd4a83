// Package main - scene-driver
// Scripted exerciser for the scene server: connects over websocket, plays
// through the doctor scene like an impatient player, and answers animation
// cues so the handshake never starves. Used for manual soak runs against a
// live server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Config for the driver run.
type Config struct {
	ServerURL    string
	Interactions []string
	SkipChance   float64
	ActionGap    time.Duration
	TestDuration time.Duration
}

// Stats tracks what came back from the server.
type Stats struct {
	Presentations int64
	Events        int64
	Animations    int64
	LinesVisible  int64
	Errors        int64
}

type envelope struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "WebSocket server URL")
	interactions := flag.String("interactions", "HearingAid,BloodPressure,Stethoscope", "Comma-separated interaction names to play, in order")
	skipChance := flag.Float64("skip-chance", 0.5, "Probability of skipping each line's reveal")
	gap := flag.Duration("gap", 2*time.Second, "Gap between interactions")
	duration := flag.Duration("duration", 60*time.Second, "Maximum run duration")
	flag.Parse()

	config := Config{
		ServerURL:    *serverURL,
		Interactions: strings.Split(*interactions, ","),
		SkipChance:   *skipChance,
		ActionGap:    *gap,
		TestDuration: *duration,
	}

	fmt.Println("=========================================")
	fmt.Println("SCENE DRIVER - scripted scene exerciser")
	fmt.Println("=========================================")
	fmt.Printf("Server:       %s\n", config.ServerURL)
	fmt.Printf("Interactions: %v\n", config.Interactions)
	fmt.Printf("Skip chance:  %.2f\n", config.SkipChance)
	fmt.Printf("Duration:     %v\n", config.TestDuration)
	fmt.Println("=========================================")

	ctx, cancel := context.WithTimeout(context.Background(), config.TestDuration)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupt received, stopping...")
		cancel()
	}()

	stats := &Stats{}
	runScene(ctx, config, stats)
	printResults(stats)
}

func runScene(ctx context.Context, config Config, stats *Stats) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.ServerURL, nil)
	if err != nil {
		log.Printf("Connection failed: %v", err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	// Receiver: count traffic, answer animation cues, randomly skip lines.
	go func() {
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			for _, raw := range strings.Split(string(message), "\n") {
				var env envelope
				if err := json.Unmarshal([]byte(raw), &env); err != nil {
					atomic.AddInt64(&stats.Errors, 1)
					continue
				}
				switch env.Channel {
				case "presentation":
					atomic.AddInt64(&stats.Presentations, 1)
					var snap struct {
						Visible bool   `json:"visible"`
						Text    string `json:"text"`
					}
					if json.Unmarshal(env.Data, &snap) == nil && snap.Visible && snap.Text != "" {
						atomic.AddInt64(&stats.LinesVisible, 1)
						if rand.Float64() < config.SkipChance {
							sendAction(conn, "SKIP", "")
						}
					}
				case "event":
					atomic.AddInt64(&stats.Events, 1)
				case "animation":
					atomic.AddInt64(&stats.Animations, 1)
					// Pretend the animation took a beat, then report done.
					go func() {
						time.Sleep(300 * time.Millisecond)
						sendAction(conn, "ANIMATION_DONE", "")
					}()
				}
			}
		}
	}()

	// Walk the scene: one interaction per gap.
	for i, name := range config.Interactions {
		select {
		case <-ctx.Done():
			return
		case <-time.After(config.ActionGap):
		}
		name = strings.TrimSpace(name)
		fmt.Printf("-> INTERACT %q (%d/%d)\n", name, i+1, len(config.Interactions))
		if err := sendAction(conn, "INTERACT", name); err != nil {
			atomic.AddInt64(&stats.Errors, 1)
			return
		}
	}

	// Let the final sequence and the scene transition play out.
	select {
	case <-ctx.Done():
	case <-time.After(15 * time.Second):
	}
}

func sendAction(conn *websocket.Conn, actionType, name string) error {
	action := map[string]interface{}{"type": actionType}
	if name != "" {
		action["name"] = name
	}
	return conn.WriteJSON(action)
}

func printResults(stats *Stats) {
	fmt.Println("\n=========================================")
	fmt.Println("SCENE DRIVER RESULTS")
	fmt.Println("=========================================")
	fmt.Printf("Presentation updates: %d\n", atomic.LoadInt64(&stats.Presentations))
	fmt.Printf("Scene events:         %d\n", atomic.LoadInt64(&stats.Events))
	fmt.Printf("Animation cues:       %d\n", atomic.LoadInt64(&stats.Animations))
	fmt.Printf("Lines seen:           %d\n", atomic.LoadInt64(&stats.LinesVisible))
	fmt.Printf("Errors:               %d\n", atomic.LoadInt64(&stats.Errors))

	if atomic.LoadInt64(&stats.Errors) == 0 && atomic.LoadInt64(&stats.LinesVisible) > 0 {
		fmt.Println("\nRUN OK: scene played end to end")
	} else {
		fmt.Println("\nRUN INCOMPLETE: check server logs")
	}
	fmt.Println("=========================================")
}
