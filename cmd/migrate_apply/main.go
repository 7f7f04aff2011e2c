package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"ai_todo/internal/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	apply := flag.Bool("apply", false, "apply migrations")
	flag.Parse()

	names, err := migrations.Names()
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}
	if !*apply {
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := migrations.Apply(context.Background(), db); err != nil {
		log.Fatal(err)
	}
	for _, name := range names {
		fmt.Printf("applied %s\n", name)
	}
}
