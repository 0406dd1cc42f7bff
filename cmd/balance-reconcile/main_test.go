package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/webnovauz/paint-management-backend/models"
)

func TestRunLockedReleasesOnDrift(t *testing.T) {
	released := false
	code := runLocked(func() { released = true }, func() int {
		if released {
			t.Fatalf("lock released before the run finished")
		}
		return exitDrift
	})
	if code != exitDrift {
		t.Fatalf("expected exit %d, got %d", exitDrift, code)
	}
	if !released {
		t.Fatalf("expected lock to be released")
	}
}

func TestReportExitCodes(t *testing.T) {
	var out bytes.Buffer
	clean := &models.ReconciliationResult{Mismatches: []*models.ReconciliationMismatch{}}
	if code := report(&out, clean, false); code != exitOK {
		t.Fatalf("expected exit %d, got %d", exitOK, code)
	}
	if !strings.Contains(out.String(), "0 mismatches") {
		t.Fatalf("unexpected output %q", out.String())
	}

	out.Reset()
	drift := &models.ReconciliationResult{Mismatches: []*models.ReconciliationMismatch{
		{CheckType: models.CheckCustomerBalance, EntityType: "Customer", EntityId: 9, Expected: "400.00", Actual: "250.00"},
	}}
	if code := report(&out, drift, false); code != exitDrift {
		t.Fatalf("expected exit %d, got %d", exitDrift, code)
	}
	if !strings.Contains(out.String(), "CUSTOMER_BALANCE Customer#9 expected=400.00 actual=250.00") {
		t.Fatalf("unexpected output %q", out.String())
	}

	out.Reset()
	if code := report(&out, drift, true); code != exitDrift {
		t.Fatalf("expected exit %d, got %d", exitDrift, code)
	}
	if !strings.Contains(out.String(), `"entity_id": 9`) {
		t.Fatalf("unexpected json %q", out.String())
	}
}
