package config

import (
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestBuildDSNSetsIsolationPerConnection(t *testing.T) {
	dsn := BuildDSN("paint", "secret", "db.internal", "3306", "paint")
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("ParseDSN: %v", err)
	}
	if cfg.Net != "tcp" || cfg.Addr != "db.internal:3306" || cfg.DBName != "paint" {
		t.Fatalf("unexpected target %s %s %s", cfg.Net, cfg.Addr, cfg.DBName)
	}
	if !cfg.ParseTime {
		t.Fatalf("expected parseTime")
	}
	if got := cfg.Params["transaction_isolation"]; got != "'READ-COMMITTED'" {
		t.Fatalf("expected READ-COMMITTED isolation param, got %q", got)
	}
}

func TestBuildDSNUnixSocket(t *testing.T) {
	dsn := BuildDSN("paint", "secret", "/var/run/mysqld/mysqld.sock", "", "paint")
	if !strings.Contains(dsn, "@unix(/var/run/mysqld/mysqld.sock)/paint?") {
		t.Fatalf("unexpected dsn %s", dsn)
	}
}
