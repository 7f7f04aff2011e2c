package main

import (
	"context"
	"flag"
	"log"
	"os"

	"ai_todo/internal/domain"
	"ai_todo/internal/repository"
)

var demoTasks = []struct {
	title, description string
	completed          bool
}{
	{"Buy milk", "2 liters, semi-skimmed", false},
	{"Walk the dog", "", false},
	{"Pay rent", "", true},
	{"Book dentist appointment", "Ask about the cleaning", false},
}

func main() {
	owner := flag.String("owner", "demo", "identifier to seed tasks for")
	flag.Parse()

	// expects DATABASE_URL env var (postgres URL or sqlite://path)
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	store, closeStore, err := repository.OpenStore(ctx, dsn)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	existing, err := store.List(ctx, *owner)
	if err != nil {
		log.Fatalf("list tasks: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("%s already has %d tasks, nothing to do\n", *owner, len(existing))
		return
	}

	for _, d := range demoTasks {
		var desc *string
		if d.description != "" {
			desc = &d.description
		}
		t, err := store.Create(ctx, *owner, d.title, desc)
		if err != nil {
			log.Fatalf("create %q: %v", d.title, err)
		}
		if d.completed {
			done := true
			if _, err := store.Update(ctx, t.ID, domain.TaskPatch{Completed: &done}); err != nil {
				log.Fatalf("complete %q: %v", d.title, err)
			}
		}
		log.Printf("task created id=%s title=%q\n", t.ID, t.Title)
	}

	// verify read
	tasks, err := store.List(ctx, *owner)
	if err != nil {
		log.Fatalf("verify: %v", err)
	}
	log.Printf("%s now has %d tasks\n", *owner, len(tasks))
}
