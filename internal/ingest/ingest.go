// Package ingest locates and reads the raw CSV exports that make up a
// case directory. It makes no attempt to interpret the cells; rows come
// out as ordered column/value pairs for the normalizer to resolve.
package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/commtrace/commtrace/internal/model"
)

// CaseRows holds the raw rows from each source found in a case
// directory. A missing export leaves its slice empty rather than
// failing the run.
type CaseRows struct {
	SMS    []model.RawRow
	Calls  []model.RawRow
	Emails []model.RawRow

	// Files records which path fed each source, for reporting.
	Files map[model.SourceKind]string
}

// Options names the files to look for inside a case directory.
type Options struct {
	SMSFile  string
	CallFile string
	// EmailCandidates are tried in order; when none exists the
	// directory is scanned for a CSV whose header looks like email.
	EmailCandidates []string
}

// DefaultOptions matches the export naming of the supported extraction
// tools.
func DefaultOptions() Options {
	return Options{
		SMSFile:         "SMS-Data.csv",
		CallFile:        "CDR-Call-Details.csv",
		EmailCandidates: []string{"emails.csv", "email_data.csv", "email_messages.csv"},
	}
}

// emailHeaderHints identify an email export by its header row when the
// file is not named conventionally.
var emailHeaderHints = []string{"email", "mail", "message", "inbox", "sent"}

// ReadCase loads every recognized export under dir. Only an unreadable
// or malformed present file is an error; absence is not.
func ReadCase(dir string, opts Options) (*CaseRows, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("case directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("case directory: %s is not a directory", dir)
	}

	rows := &CaseRows{Files: make(map[model.SourceKind]string)}

	smsPath := filepath.Join(dir, opts.SMSFile)
	if rows.SMS, err = readOptional(smsPath); err != nil {
		return nil, err
	} else if rows.SMS != nil {
		rows.Files[model.SourceSMS] = smsPath
	}

	callPath := filepath.Join(dir, opts.CallFile)
	if rows.Calls, err = readOptional(callPath); err != nil {
		return nil, err
	} else if rows.Calls != nil {
		rows.Files[model.SourceCall] = callPath
	}

	emailPath, err := findEmailFile(dir, opts.EmailCandidates, opts.SMSFile, opts.CallFile)
	if err != nil {
		return nil, err
	}
	if emailPath != "" {
		if rows.Emails, err = ReadFile(emailPath); err != nil {
			return nil, err
		}
		rows.Files[model.SourceEmail] = emailPath
	}

	return rows, nil
}

// ReadFile parses one delimited file into raw rows. The delimiter is
// sniffed from the header line; comma, semicolon and tab are supported.
func ReadFile(path string) ([]model.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// Read parses delimited rows from r. The first row is the header; cells
// under an empty header name are dropped.
func Read(r io.Reader) ([]model.RawRow, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && err != io.EOF {
		return nil, err
	}

	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(head)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []model.RawRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := model.RawRow{Values: make(map[string]string, len(header))}
		for i, name := range header {
			if name == "" || i >= len(rec) {
				continue
			}
			row.Columns = append(row.Columns, name)
			row.Values[name] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// sniffDelimiter picks the delimiter with the most occurrences on the
// first line. Comma wins ties and empty input.
func sniffDelimiter(head []byte) rune {
	line := string(head)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best, bestCount := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// readOptional returns nil rows with no error when path does not exist.
func readOptional(path string) ([]model.RawRow, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return ReadFile(path)
}

// findEmailFile tries the configured candidates, then falls back to
// scanning dir for a CSV whose header mentions email-like columns.
// Files already claimed by the other sources are skipped; an SMS export
// also has a message column.
func findEmailFile(dir string, candidates []string, claimed ...string) (string, error) {
	for _, name := range candidates {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		skip := false
		for _, c := range claimed {
			if strings.EqualFold(e.Name(), c) {
				skip = true
				break
			}
		}
		if !skip {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		p := filepath.Join(dir, name)
		if looksLikeEmail(p) {
			return p, nil
		}
	}
	return "", nil
}

func looksLikeEmail(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return false
	}
	header := strings.ToLower(line)
	for _, hint := range emailHeaderHints {
		if strings.Contains(header, hint) {
			return true
		}
	}
	return false
}
