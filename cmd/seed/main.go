// Command seed fills the database with generated forum content.
package main

import (
	"flag"
	"log"

	"stackit/internal/config"
	"stackit/internal/database"
	"stackit/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numQuestions := flag.Int("questions", 100, "Number of questions to create")
	maxAnswers := flag.Int("answers", 5, "Maximum answers per question")
	maxDays := flag.Int("days", 30, "Spread created_at over this many past days")
	shouldClean := flag.Bool("clean", true, "Clean forum tables before seeding")
	dryRun := flag.Bool("dry-run", false, "Build records without writing them")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	fixtures := flag.String("fixtures", "", "YAML fixture file applied after generation")
	flag.Parse()

	log.Printf("Seeding: %d users, %d questions, up to %d answers each, clean=%v dry-run=%v",
		*numUsers, *numQuestions, *maxAnswers, *shouldClean, *dryRun)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	opts := seed.Options{
		NumUsers:     *numUsers,
		NumQuestions: *numQuestions,
		MaxAnswers:   *maxAnswers,
		MaxDays:      *maxDays,
		ShouldClean:  *shouldClean,
		DryRun:       *dryRun,
		RandSeed:     *randSeed,
	}

	summary, err := seed.Seed(db, opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Generated %d users, %d questions, %d answers (%d accepted), %d votes",
		summary.Users, summary.Questions, summary.Answers, summary.Accepted, summary.Votes)

	if *fixtures != "" {
		fx, err := seed.LoadFixtures(*fixtures)
		if err != nil {
			log.Fatalf("Failed to load fixtures: %v", err)
		}
		opts.ShouldClean = false
		fs, err := seed.ApplyFixtures(db, fx, opts)
		if err != nil {
			log.Fatalf("Applying fixtures failed: %v", err)
		}
		log.Printf("Fixtures: %d users, %d questions, %d answers", fs.Users, fs.Questions, fs.Answers)
	}

	log.Printf("Done. Generated users share the password %q", seed.DefaultPassword)
}
