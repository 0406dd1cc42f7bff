package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/webnovauz/paint-management-backend/config"
	"github.com/webnovauz/paint-management-backend/models"
)

func main() {
	recordID := flag.Int("record-id", 0, "Replay a single outbox record")
	allDead := flag.Bool("all-dead", false, "Replay every DEAD record")
	limit := flag.Int("limit", 500, "Max records with --all-dead")
	flag.Parse()

	if *recordID <= 0 && !*allDead {
		fmt.Fprintln(os.Stderr, "--record-id or --all-dead is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	ctx := context.Background()

	ids := []int{}
	if *recordID > 0 {
		ids = append(ids, *recordID)
	}
	if *allDead {
		records, err := models.ListOutboxRecordsByStatus(ctx, models.OutboxPublishStatusDead, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list dead records: %v\n", err)
			os.Exit(1)
		}
		for _, r := range records {
			ids = append(ids, r.ID)
		}
	}

	failed := 0
	for _, id := range ids {
		record, err := models.ReplayOutboxRecord(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "replay %d: %v\n", id, err)
			failed++
			continue
		}
		config.LogInfo(config.GetLogger(), "OutboxReplay", "main", "outbox record requeued", map[string]interface{}{
			"record_id": record.ID,
			"event":     record.EventType,
		})
		fmt.Printf("replayed outbox record=%d event=%s reference=%s#%d\n", record.ID, record.EventType, record.ReferenceType, record.ReferenceId)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
