package mysql

import (
	"testing"
	"time"
)

func TestConnConfig_ForcesParseTime(t *testing.T) {
	cfg, err := connConfig("root:root@tcp(db:3306)/gezgi")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !cfg.ParseTime {
		t.Fatalf("expected ParseTime to be forced on")
	}
	if cfg.Loc != time.UTC {
		t.Fatalf("expected UTC location, got %v", cfg.Loc)
	}
	if cfg.DBName != "gezgi" || cfg.Addr != "db:3306" {
		t.Fatalf("dsn fields lost: %+v", cfg)
	}

	cfg, err = connConfig("root:root@tcp(db:3306)/gezgi?parseTime=false&loc=Local")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !cfg.ParseTime || cfg.Loc != time.UTC {
		t.Fatalf("explicit DSN flags must not win: parseTime=%v loc=%v", cfg.ParseTime, cfg.Loc)
	}
}

func TestConnConfig_RejectsGarbage(t *testing.T) {
	if _, err := connConfig("not a dsn"); err == nil {
		t.Fatalf("expected parse error")
	}
}
