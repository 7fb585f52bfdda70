package main

import (
	"context"
	"flag"
	"log"
	"os"

	"recruitflow/internal/cv"
	"recruitflow/internal/storage"
)

// rescore recomputes matching scores for every candidate of one job.
// Useful after a job's required skills change: scores are normally only
// written at ingestion time.
func main() {
	var dryRun bool
	var jobID string
	flag.BoolVar(&dryRun, "dry-run", true, "If true, do not persist updates; just print changes")
	flag.StringVar(&jobID, "job", "", "Job ID whose candidates should be rescored (required)")
	flag.Parse()

	if jobID == "" {
		log.Fatal("-job is required")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	log.Printf("Connecting to DB...")
	store, err := storage.NewPostgresStore(dbURL)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	job, err := store.GetJob(ctx, jobID)
	if err != nil {
		log.Fatalf("loading job: %v", err)
	}
	candidates, err := store.ListCandidates(ctx, jobID, storage.CandidateFilter{})
	if err != nil {
		log.Fatalf("listing candidates: %v", err)
	}
	log.Printf("Rescoring %d candidates of %q against %d required skills",
		len(candidates), job.Title, len(job.RequiredSkills))

	updated := 0
	for _, c := range candidates {
		score := cv.MatchScore(c.Skills, job.RequiredSkills, c.ExperienceYears)
		if score == c.MatchingScore {
			continue
		}
		log.Printf("%s <%s>: %d -> %d", c.Name, c.Email, c.MatchingScore, score)
		if dryRun {
			continue
		}
		c.MatchingScore = score
		if err := store.UpdateCandidate(ctx, c); err != nil {
			log.Printf("failed to update %s: %v", c.ID, err)
			continue
		}
		updated++
	}

	if dryRun {
		log.Printf("[dry-run] no changes persisted")
		return
	}
	log.Printf("Rescore complete, %d candidates updated", updated)
}
