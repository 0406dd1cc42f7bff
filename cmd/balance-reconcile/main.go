package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/webnovauz/paint-management-backend/config"
	"github.com/webnovauz/paint-management-backend/models"
	"github.com/webnovauz/paint-management-backend/utils"
)

const (
	exitOK    = 0
	exitError = 1
	exitBusy  = 2
	exitDrift = 3
)

func main() {
	asJSON := flag.Bool("json", false, "Print mismatches as JSON")
	timeout := flag.Duration("timeout", 5*time.Minute, "Abort after this long")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(exitError)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	ctx = utils.SetUserNameInContext(ctx, "balance-reconcile")

	// one run at a time across hosts
	release, err := utils.ObtainLock(ctx, "balance-reconcile", *timeout)
	if err != nil {
		cancel()
		var integrityErr *utils.IntegrityError
		if errors.As(err, &integrityErr) {
			fmt.Fprintln(os.Stderr, "another reconciliation is running")
			os.Exit(exitBusy)
		}
		fmt.Fprintf(os.Stderr, "obtain lock: %v\n", err)
		os.Exit(exitError)
	}

	code := runLocked(release, func() int {
		result, err := models.RunBalanceReconciliation(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reconciliation failed: %v\n", err)
			return exitError
		}
		return report(os.Stdout, result, *asJSON)
	})
	cancel()
	os.Exit(code)
}

// runLocked releases the lock before handing back the exit code;
// os.Exit would skip a deferred release.
func runLocked(release func(), run func() int) int {
	defer release()
	return run()
}

func report(w io.Writer, result *models.ReconciliationResult, asJSON bool) int {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			return exitError
		}
	} else {
		for _, m := range result.Mismatches {
			fmt.Fprintf(w, "%s %s#%d expected=%s actual=%s\n", m.CheckType, m.EntityType, m.EntityId, m.Expected, m.Actual)
		}
		fmt.Fprintf(w, "balance reconciliation complete: %d mismatches\n", len(result.Mismatches))
	}
	if !result.OK() {
		return exitDrift
	}
	return exitOK
}
