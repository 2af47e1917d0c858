// Command synthgame emits a deterministic synthetic contest bundle, either
// to a file/stdout or straight to a running service.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/matchreel/matchreel/internal/synth"
)

const submitTimeout = 30 * time.Second

func main() {
	cfg := synth.DefaultConfig()

	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	flag.StringVar(&cfg.Pattern, "pattern", cfg.Pattern, "game shape: seesaw, blowout, comeback")
	flag.IntVar(&cfg.Plays, "plays", cfg.Plays, "number of plays to generate")
	flag.IntVar(&cfg.Posts, "posts", cfg.Posts, "number of social posts to generate")
	flag.IntVar(&cfg.Snapshots, "snapshots", cfg.Snapshots, "number of market snapshots to generate")
	flag.StringVar(&cfg.ContestID, "contest", cfg.ContestID, "contest id")
	out := flag.String("out", "", "output file (default stdout)")
	submit := flag.String("submit", "", "service base URL to POST the bundle to instead of writing it")
	flag.Parse()

	bundle := synth.New(cfg).Generate()

	payload := map[string]any{
		"submission_id": fmt.Sprintf("synth-%s-%d", cfg.Pattern, cfg.Seed),
		"contest":       bundle,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "marshal failed:", err)
		os.Exit(1)
	}

	if *submit != "" {
		client := &http.Client{Timeout: submitTimeout}
		resp, err := client.Post(*submit+"/contests", "application/json", bytes.NewReader(data))
		if err != nil {
			fmt.Fprintln(os.Stderr, "submit failed:", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		fmt.Println("submitted:", resp.Status)
		return
	}

	if *out == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*out, data, 0o600); err != nil {
		fmt.Fprintln(os.Stderr, "write failed:", err)
		os.Exit(1)
	}
	fmt.Println("wrote", *out)
}
