package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/commtrace/commtrace/internal/model"
	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadCommaFile(t *testing.T) {
	rows, err := Read(strings.NewReader("Phone, Message ,Date\n+15551234567, hello ,2026-01-02\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}

	want := model.RawRow{
		Columns: []string{"Phone", "Message", "Date"},
		Values: map[string]string{
			"Phone":   "+15551234567",
			"Message": "hello",
			"Date":    "2026-01-02",
		},
	}
	if diff := cmp.Diff(want, rows[0]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestReadSniffsDelimiter(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"semicolon", "Phone;Message\n+15551234567;hi, there\n"},
		{"tab", "Phone\tMessage\n+15551234567\thi, there\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Read(strings.NewReader(tt.input))
			if err != nil {
				t.Fatal(err)
			}
			if len(rows) != 1 {
				t.Fatalf("rows = %d, want 1", len(rows))
			}
			// A non-comma delimiter keeps the embedded comma in the cell.
			if got := rows[0].Get("Message"); got != "hi, there" {
				t.Errorf("Message = %q, want %q", got, "hi, there")
			}
		})
	}
}

func TestReadDropsEmptyHeaderCells(t *testing.T) {
	rows, err := Read(strings.NewReader("Phone,,Message\n+15551234567,junk,hello\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := rows[0].Columns; len(got) != 2 || got[0] != "Phone" || got[1] != "Message" {
		t.Errorf("Columns = %v, want [Phone Message]", got)
	}
	if _, ok := rows[0].Values[""]; ok {
		t.Error("empty header name must not appear in Values")
	}
}

func TestReadRaggedRows(t *testing.T) {
	rows, err := Read(strings.NewReader("Phone,Message,Date\n+15551234567,hello\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := rows[0].Get("Date"); got != "" {
		t.Errorf("Date = %q, want empty for short row", got)
	}
	if got := rows[0].Columns; len(got) != 2 {
		t.Errorf("Columns = %v, want only the populated pair", got)
	}
}

func TestReadEmptyInput(t *testing.T) {
	rows, err := Read(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if rows != nil {
		t.Errorf("rows = %v, want nil", rows)
	}
}

func TestReadCaseDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "SMS-Data.csv", "Phone,Message,Date\n+15551234567,hello,2026-01-02\n")
	writeFile(t, dir, "CDR-Call-Details.csv", "Phone Number,Day Mins\n+15559876543,12.5\n")
	writeFile(t, dir, "emails.csv", "From,To,Subject,Body\na@b.com,c@d.com,hi,text\n")

	rows, err := ReadCase(dir, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows.SMS) != 1 || len(rows.Calls) != 1 || len(rows.Emails) != 1 {
		t.Fatalf("counts = %d/%d/%d, want 1/1/1", len(rows.SMS), len(rows.Calls), len(rows.Emails))
	}
	for _, kind := range []model.SourceKind{model.SourceSMS, model.SourceCall, model.SourceEmail} {
		if rows.Files[kind] == "" {
			t.Errorf("Files[%s] not recorded", kind)
		}
	}
}

func TestReadCaseMissingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "SMS-Data.csv", "Phone,Message\n+15551234567,hello\n")

	rows, err := ReadCase(dir, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows.SMS) != 1 {
		t.Errorf("SMS rows = %d, want 1", len(rows.SMS))
	}
	if rows.Calls != nil || rows.Emails != nil {
		t.Errorf("missing sources must stay nil, got calls=%v emails=%v", rows.Calls, rows.Emails)
	}
	if _, ok := rows.Files[model.SourceCall]; ok {
		t.Error("Files must not record an absent export")
	}
}

func TestReadCaseEmailDiscovery(t *testing.T) {
	// No conventional email filename; the header scan must find the
	// export and skip the SMS file even though its header says Message.
	dir := t.TempDir()
	writeFile(t, dir, "SMS-Data.csv", "Phone,Message,Date\n+15551234567,hello,2026-01-02\n")
	writeFile(t, dir, "export_2026.csv", "Message_ID,From,To,Subject,Body\n1,a@b.com,c@d.com,hi,text\n")

	rows, err := ReadCase(dir, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows.Emails) != 1 {
		t.Fatalf("email rows = %d, want 1", len(rows.Emails))
	}
	if got := filepath.Base(rows.Files[model.SourceEmail]); got != "export_2026.csv" {
		t.Errorf("email file = %s, want export_2026.csv", got)
	}
}

func TestReadCaseNotADirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "file.csv", "a,b\n")
	if _, err := ReadCase(path, DefaultOptions()); err == nil {
		t.Error("expected error for non-directory case path")
	}
	if _, err := ReadCase(filepath.Join(dir, "missing"), DefaultOptions()); err == nil {
		t.Error("expected error for absent case path")
	}
}
