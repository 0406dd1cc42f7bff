package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFormatDocumentNumber(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	if got := FormatDocumentNumber("S", at); got != "S20240309140507" {
		t.Fatalf("unexpected number %q", got)
	}
}

func TestNextDocumentNumber_SuffixesTakenNumbers(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	taken := map[string]bool{
		"P20240309140507":   true,
		"P20240309140507-1": true,
	}
	got, err := NextDocumentNumber(context.Background(), "P", at, func(n string) (bool, error) {
		return taken[n], nil
	})
	if err != nil {
		t.Fatalf("NextDocumentNumber error: %v", err)
	}
	if got != "P20240309140507-2" {
		t.Fatalf("expected P20240309140507-2, got %q", got)
	}
}

func TestNextDocumentNumber_GivesUp(t *testing.T) {
	_, err := NextDocumentNumber(context.Background(), "S", time.Now(), func(string) (bool, error) {
		return true, nil
	})
	var ie *IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IntegrityError, got %v", err)
	}
}

func TestObtainLock_NoopWithoutRedis(t *testing.T) {
	release, err := ObtainLock(context.Background(), "balance-reconcile", time.Second)
	if err != nil {
		t.Fatalf("ObtainLock error: %v", err)
	}
	release()
}
