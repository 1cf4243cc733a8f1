// Command seed inserts a handful of sample events so the API has something
// to serve on a fresh database. Running it twice inserts the events twice;
// it is a development helper, not a migration.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/priyanshu9046/SortMyScene/internal/config"
	"github.com/priyanshu9046/SortMyScene/internal/database"
	"github.com/priyanshu9046/SortMyScene/internal/model"
	"github.com/priyanshu9046/SortMyScene/internal/repository"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	now := time.Now().UTC()
	events := []model.Event{
		{Name: "Indie Rock Night", Date: now.AddDate(0, 0, 14), Venue: "Riverside Arena", TotalSeats: 120},
		{Name: "Stand-up Comedy Gala", Date: now.AddDate(0, 0, 21), Venue: "City Hall Theatre", TotalSeats: 80},
		{Name: "Jazz Quartet Evening", Date: now.AddDate(0, 1, 0), Venue: "Blue Note Club", TotalSeats: 40},
		{Name: "Tech Conference Keynote", Date: now.AddDate(0, 1, 10), Venue: "Convention Centre", TotalSeats: 300},
	}

	repo := repository.NewEventRepo(db)
	for i := range events {
		if err := repo.Create(ctx, &events[i]); err != nil {
			log.Fatalf("seed %q: %v", events[i].Name, err)
		}
		log.Printf("seeded event %d: %s (%d seats)", events[i].ID, events[i].Name, events[i].TotalSeats)
	}
}
