package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/mansoorceksport/liftlog/internal/config"
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/repository"
	"github.com/mansoorceksport/liftlog/internal/service"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	userID := flag.String("user", "", "User ID to rebuild personal records for (required)")
	exerciseID := flag.String("exercise", "", "Only rebuild this exercise")
	dryRun := flag.Bool("dry-run", false, "Show what would be done without making changes")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall timeout")
	flag.Parse()

	if *userID == "" {
		fmt.Println("Usage: backfill_records -user <USER_ID> [-exercise <EXERCISE_ID>] [-dry-run]")
		fmt.Println("\nThis script replays a user's set history in chronological order and")
		fmt.Println("replaces the stored personal records with the result.")
		os.Exit(1)
	}
	if *exerciseID != "" && *dryRun {
		log.Fatal("-dry-run is only supported when rebuilding every exercise")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
	defer redisClient.Close()

	db := client.Database(cfg.MongoDB.Database)
	recordService := service.NewRecordService(
		repository.NewMongoSetLogRepository(db),
		repository.NewMongoPersonalRecordRepository(db),
		repository.NewMongoExerciseRepository(db),
		repository.NewRedisCacheRepository(redisClient),
		cfg.Progression.RecordRetries,
		nil,
	)

	fmt.Printf("🔍 Rebuilding personal records for user: %s\n", *userID)

	if *exerciseID != "" {
		records, err := recordService.RebuildRecords(ctx, *userID, *exerciseID)
		if err != nil {
			log.Fatalf("Failed to rebuild %s: %v", *exerciseID, err)
		}
		printRecords(*exerciseID, records)
		fmt.Println("✅ Done")
		return
	}

	rebuilt, err := recordService.RebuildAll(ctx, *userID, *dryRun)
	if err != nil {
		log.Fatalf("Failed to rebuild records: %v", err)
	}

	ids := make([]string, 0, len(rebuilt))
	for id := range rebuilt {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	total := 0
	for _, id := range ids {
		printRecords(id, rebuilt[id])
		total += len(rebuilt[id])
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("✅ Summary:\n")
	fmt.Printf("   Exercises: %d\n", len(ids))
	fmt.Printf("   Records: %d\n", total)

	if *dryRun {
		fmt.Println("\n⚠️  This was a dry run. No changes were made.")
		fmt.Println("   Run without -dry-run to apply changes.")
	}
}

func printRecords(exerciseID string, records []*domain.PersonalRecord) {
	fmt.Printf("🏋️  %s\n", exerciseID)
	if len(records) == 0 {
		fmt.Println("   no working sets, records cleared")
		return
	}
	for _, r := range records {
		fmt.Printf("   %-11s %8.1f  (set %s, %s)\n", r.RecordType, r.Value, r.SetID, r.AchievedAt.Format("2006-01-02"))
	}
}
