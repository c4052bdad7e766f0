package sqldb

import (
	"database/sql"
	"testing"
	"time"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		in      string
		want    string
	}{
		{"sqlite unchanged", SQLite, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{"postgres numbered", Postgres, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{"postgres no params", Postgres, "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New(nil, tt.dialect)
			if got := q.rebind(tt.in); got != tt.want {
				t.Errorf("rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTimeFormatSortsChronologically(t *testing.T) {
	base := time.Date(2024, 3, 9, 23, 59, 59, 0, time.UTC)
	earlier := formatTime(base)
	later := formatTime(base.Add(1500 * time.Microsecond))
	if !(earlier < later) {
		t.Errorf("%q should sort before %q", earlier, later)
	}

	ny := time.FixedZone("EST", -5*3600)
	if got := formatTime(base.In(ny)); got != earlier {
		t.Errorf("formatTime should normalize to UTC: got %q want %q", got, earlier)
	}

	parsed, err := parseTime(later)
	if err != nil {
		t.Fatalf("parseTime: %v", err)
	}
	if !parsed.Equal(base.Add(1500 * time.Microsecond)) {
		t.Errorf("round trip lost precision: %v", parsed)
	}
}

func TestParseNullTime(t *testing.T) {
	got, err := parseNullTime(nullStringOf(""))
	if err != nil || got != nil {
		t.Errorf("empty value = %v, %v; want nil, nil", got, err)
	}
	if _, err := parseNullTime(nullStringOf("yesterday")); err == nil {
		t.Error("expected error for malformed timestamp")
	}
}

func nullStringOf(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
