package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/halisahaclub/halisaha/internal/database"
	"github.com/halisahaclub/halisaha/internal/docstore"
	"github.com/halisahaclub/halisaha/internal/group"
	"github.com/halisahaclub/halisaha/internal/match"
	"github.com/joho/godotenv"
)

// Simplified config loading for the script
func loadConfig() (dbName, migrationsDir string) {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	dbName = os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "halisaha.db"
	}
	migrationsDir = os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "./migrations"
	}
	return dbName, migrationsDir
}

func main() {
	log.Info("Starting database seeder...")
	dbName, migrationsDir := loadConfig()
	ctx := context.Background()

	db, teardown, err := database.InitDB(dbName, os.Getenv("TURSO_PRIMARY_URL"), os.Getenv("TURSO_AUTH_TOKEN"), migrationsDir)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	store := docstore.New(db)
	groups := group.New(store)
	matches := match.New(store)

	g, err := groups.Create(ctx, "Salı Akşamı Maçları", "user-ali")
	if err != nil {
		log.Fatalf("Failed to create demo group: %s", err)
	}
	for _, userID := range []string{"user-veli", "user-can", "user-osman"} {
		if err := groups.AddMember(ctx, g.ID, userID); err != nil {
			log.Fatalf("Failed to add member %s: %s", userID, err)
		}
	}

	// Guests entered by hand over time, including a deliberate near-duplicate
	// so the dedup endpoint has something to chew on.
	guests := []group.GuestPlayer{}
	for _, name := range []string{"Mehmet", "MEHMET", "Ayşe", "Hakan"} {
		guest, err := groups.AddGuest(ctx, g.ID, name)
		if err != nil {
			// The list check rejects normalized duplicates, so seed the
			// near-duplicate directly.
			guest = group.GuestPlayer{ID: fmt.Sprintf("guest_%d_seed", len(guests)), Name: name}
		}
		guests = append(guests, guest)
	}
	if err := groups.SetGuestList(ctx, g.ID, guests); err != nil {
		log.Fatalf("Failed to set guest list: %s", err)
	}
	log.Info("Seeded demo group", "groupID", g.ID, "guests", len(guests))

	season, err := groups.StartSeason(ctx, g.ID, "2026 Sonbahar")
	if err != nil {
		log.Fatalf("Failed to start season: %s", err)
	}

	users := []match.PlayerRef{
		{Kind: match.KindUser, ID: "user-ali", Name: "Ali"},
		{Kind: match.KindUser, ID: "user-veli", Name: "Veli"},
		{Kind: match.KindUser, ID: "user-can", Name: "Can"},
		{Kind: match.KindUser, ID: "user-osman", Name: "Osman"},
	}

	const numMatches = 20
	startTime := time.Now()
	for i := 0; i < numMatches; i++ {
		kickoff := time.Now().Add(-time.Duration(rand.Intn(120*24)) * time.Hour)
		teamA := []match.PlayerRef{users[0], users[1], guestRef(guests[i%len(guests)])}
		teamB := []match.PlayerRef{users[2], users[3], guestRef(guests[(i+1)%len(guests)])}

		m, err := matches.Create(ctx, &match.Match{
			GroupID:   g.ID,
			SeasonID:  season.ID,
			Venue:     "Yıldız Halı Saha",
			Date:      kickoff.Format(time.RFC3339),
			TeamAName: "Kırmızı",
			TeamBName: "Beyaz",
			TeamA:     teamA,
			TeamB:     teamB,
		})
		if err != nil {
			log.Fatalf("Failed to create match: %s", err)
		}

		scoreA, scoreB := rand.Intn(6), rand.Intn(6)
		lines := map[string]match.StatLine{
			teamA[0].ID: {Goals: scoreA},
			teamB[0].ID: {Goals: scoreB},
		}
		if err := matches.Finish(ctx, m.ID, match.FinishRequest{
			ScoreA:    scoreA,
			ScoreB:    scoreB,
			Stats:     lines,
			TeamA:     teamA,
			TeamB:     teamB,
			TeamAName: "Kırmızı",
			TeamBName: "Beyaz",
		}); err != nil {
			log.Fatalf("Failed to finish match: %s", err)
		}
	}

	log.Info("Successfully seeded demo matches.", "count", numMatches, "duration", time.Since(startTime))
}

func guestRef(g group.GuestPlayer) match.PlayerRef {
	return match.PlayerRef{Kind: match.KindGuest, ID: g.ID, Name: g.Name}
}
