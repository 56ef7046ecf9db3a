package storage

import (
	"strings"
	"testing"
)

func TestDialect_Rebind(t *testing.T) {
	pg, err := dialectFor(DriverPostgres)
	if err != nil {
		t.Fatal(err)
	}
	got := pg.Rebind(`UPDATE blocks SET layer = ? WHERE artboard_id = ? AND reference = ?`)
	want := `UPDATE blocks SET layer = $1 WHERE artboard_id = $2 AND reference = $3`
	if got != want {
		t.Errorf("Rebind = %q", got)
	}

	lite, _ := dialectFor(DriverSQLite)
	if q := `SELECT ? `; lite.Rebind(q) != q {
		t.Error("sqlite keeps ? placeholders")
	}
}

func TestDialect_DSN(t *testing.T) {
	tests := []struct {
		driver string
		in     string
		want   string
	}{
		{DriverSQLite, "/tmp/a.db", "/tmp/a.db?_journal_mode=WAL&_busy_timeout=5000"},
		{DriverSQLite, "file:a.db?mode=memory", "file:a.db?mode=memory"},
		{DriverPostgres, "host=db user=art", "host=db user=art"},
	}
	for _, tt := range tests {
		t.Run(tt.driver+" "+tt.in, func(t *testing.T) {
			d, err := dialectFor(tt.driver)
			if err != nil {
				t.Fatal(err)
			}
			got, err := d.dsn(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("dsn = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDialect_MySQLForcesParseTime(t *testing.T) {
	d, _ := dialectFor(DriverMySQL)
	got, err := d.dsn("art:pw@tcp(localhost:3306)/artboard")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"parseTime=true", "clientFoundRows=true"} {
		if !strings.Contains(got, want) {
			t.Errorf("dsn %q missing %s", got, want)
		}
	}
}
