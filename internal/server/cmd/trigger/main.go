// Trigger is a developer tool for pushing mission state into a running
// relay server over the same HTTP surface the browser uses. The server
// must be started with -enable-patch for the patch actions to land.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"MissionRelay/internal/mission"
	"MissionRelay/internal/poller"
)

var client = &http.Client{Timeout: 3 * time.Second}

func baseURL(host string) string {
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/")
}

func post(base, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	resp, err := client.Post(base+path, "application/json", body)
	if err != nil {
		return fmt.Errorf("cannot reach server at %s: %w", base, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}

func patch(base string, payload map[string]any) error {
	return post(base, "/api/mission/patch", payload)
}

func printState(base string) error {
	resp, err := client.Get(base + "/api/mission/state")
	if err != nil {
		return fmt.Errorf("could not fetch state: %w", err)
	}
	defer resp.Body.Close()
	var state map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return err
	}
	fmt.Println("\n-- live server state ------------------------")
	for _, key := range []string{"drone_active", "recording_active", "ai_status", "gps", "battery"} {
		fmt.Printf("  %-16s: %v\n", key, state[key])
	}
	fmt.Println("---------------------------------------------")
	return nil
}

// watch dispatches a mission and follows it with the polling loop,
// printing each snapshot's derived indicators.
func watch(base string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := poller.New(base)
	p.Renderer = poller.RendererFunc(func(s poller.Snapshot) {
		status := mission.ParseAIStatus(s.AIStatus)
		fmt.Printf("drone %3d%%  recording %3d%%  ai %3d%%  (%s)\n",
			mission.DroneIndicator(s.DroneActive),
			mission.RecordingIndicator(s.RecordingActive),
			mission.AIIndicator(status),
			s.AIStatus)
	})
	return p.Dispatch(ctx)
}

type action struct {
	key   string
	label string
	run   func(base string) error
}

func menuActions() []action {
	patchAction := func(key, label string, payload map[string]any) action {
		return action{key: key, label: label, run: func(base string) error { return patch(base, payload) }}
	}
	return []action{
		{"1", "Start mission (no GPS)", func(base string) error {
			return post(base, "/api/mission/start", map[string]any{"lat": nil, "lon": nil})
		}},
		patchAction("2", "Set AI -> Initializing", map[string]any{"ai_status": "Initializing"}),
		patchAction("3", "Set AI -> Monitoring", map[string]any{"ai_status": "Monitoring"}),
		patchAction("4", "Set AI -> Human Detected", map[string]any{"ai_status": "Human Detected"}),
		patchAction("5", "Activate drone system", map[string]any{"drone_active": true}),
		patchAction("6", "Activate recording", map[string]any{"recording_active": true}),
		{"7", "Print live server state", printState},
		{"8", "Reset mission", func(base string) error {
			return post(base, "/api/mission/reset", nil)
		}},
	}
}

func runMenu(base string) {
	actions := menuActions()
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Printf("manual trigger connected to %s\n\n", base)
	for {
		fmt.Println("Select action:")
		for _, entry := range actions {
			fmt.Printf("  [%s] %s\n", entry.key, entry.label)
		}
		fmt.Println("  [q] Quit")
		fmt.Print("\n> ")

		if !scanner.Scan() {
			return
		}
		choice := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if choice == "q" {
			return
		}

		matched := false
		for _, entry := range actions {
			if entry.key == choice {
				matched = true
				if err := entry.run(base); err != nil {
					fmt.Printf("  x %v\n\n", err)
				} else {
					fmt.Printf("  ok %s\n\n", entry.label)
				}
				break
			}
		}
		if !matched {
			fmt.Println("  invalid choice")
		}
	}
}

func main() {
	host := flag.String("host", "http://127.0.0.1:8080", "server base URL or host:port")
	watchMode := flag.Bool("watch", false, "dispatch a mission and follow it to resolution")
	flag.Parse()

	base := baseURL(*host)
	if *watchMode {
		if err := watch(base); err != nil {
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
			os.Exit(1)
		}
		return
	}
	runMenu(base)
}
