package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bklimczak/aaicore/engine/config"
	"github.com/bklimczak/aaicore/engine/root"
	"github.com/bklimczak/aaicore/engine/transport"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "host engine websocket address")
	configPath := flag.String("config", "", "AI config YAML path; empty uses built-in defaults")
	team := flag.Int("team", 0, "team id this instance plays as")
	instance := flag.Int("instance", 0, "instance offset, used to desync periodic updates across allied AAIRoot instances")
	flag.Parse()

	log.Println("===========================")
	log.Println("  aaicore skirmish AI")
	log.Println("===========================")

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("received shutdown signal")
		cancel()
	}()

	logger := log.Default()
	session, err := transport.Dial(ctx, *addr, logger)
	if err != nil {
		log.Fatalf("transport: %v", err)
	}
	defer session.Close()

	ai := root.New(logger)
	if err := ai.Init(session, *team, cfg, *instance); err != nil {
		log.Fatalf("root: init: %v", err)
	}

	log.Printf("connected to %s as team %d", *addr, *team)
	drive(ai, session)
	log.Println("event stream closed, shutting down")
}

// drive ranges over the session's event stream until the host engine
// closes it or the process is asked to shut down, handing every event to
// AAIRoot.Dispatch (spec §4.N's callback routing).
func drive(ai *root.AAIRoot, session *transport.Session) {
	for ev := range session.Events() {
		ai.Dispatch(ev)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
