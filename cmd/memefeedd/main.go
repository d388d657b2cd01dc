// Command memefeedd runs a local meme API server for development.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"memefeed/internal/config"
	"memefeed/internal/memeserver"
	"memefeed/internal/observability"
)

func main() {
	seedUsers := flag.Int("seed-users", 10, "number of demo users to create when the database is empty")
	seedMemes := flag.Int("seed-memes", 5, "memes per demo user")
	seedComments := flag.Int("seed-comments", 3, "comments per seeded meme")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observability.SetLevel(cfg.LogLevel)

	store, err := memeserver.OpenStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	if err := seedIfEmpty(store, *seedUsers, *seedMemes, *seedComments); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	srv := memeserver.NewServer(cfg, store)
	app := srv.App()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("memefeedd listening on port %s (login: demo/password)", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// seedIfEmpty fills a fresh database with demo content so the client has
// something to show on first run.
func seedIfEmpty(store *memeserver.Store, users, memes, comments int) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	empty, err := store.Empty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}
	return memeserver.Seed(ctx, store, memeserver.SeedOptions{
		NumUsers:        users,
		MemesPerUser:    memes,
		CommentsPerMeme: comments,
	})
}
