package cookies

import (
	"bufio"
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

// sqliteMagic is the first 16 bytes of any SQLite database file.
var sqliteMagic = []byte("SQLite format 3\x00")

var netscapeHeaders = []string{
	"# Netscape HTTP Cookie File",
	"# HTTP Cookie File",
}

// DetectFormat determines the cookie store format of the file at path.
func DetectFormat(path string) (CookieFormat, error) {
	if err := checkCookieFile(path); err != nil {
		return FormatUnknown, err
	}
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("error: cannot open cookie file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	header, err := r.Peek(len(sqliteMagic))
	if err != nil && err != io.EOF {
		return FormatUnknown, fmt.Errorf("error: cannot read cookie file: %w", err)
	}
	if bytes.Equal(header, sqliteMagic) {
		return detectSQLiteFormat(path)
	}

	firstLine, _ := r.ReadString('\n')
	firstLine = strings.TrimRight(firstLine, "\r\n")
	for _, h := range netscapeHeaders {
		if firstLine == h {
			return FormatNetscape, nil
		}
	}
	return FormatUnknown, fmt.Errorf("error: unsupported cookie database schema at %s", path)
}

// detectSQLiteFormat opens the SQLite file and checks which cookie table exists.
func detectSQLiteFormat(path string) (CookieFormat, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return FormatUnknown, fmt.Errorf("error: cannot open SQLite database: %w", err)
	}
	defer db.Close()

	for _, probe := range []struct {
		table  string
		format CookieFormat
	}{
		{"moz_cookies", FormatFirefox},
		{"cookies", FormatChrome},
	} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, probe.table).Scan(&name)
		if err == nil {
			return probe.format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("error: unsupported cookie database schema at %s", path)
}

// tableColumns lists the column names of table.
func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// optionalColumn selects col when present and fallback otherwise, keeping the
// scan layout fixed across schema versions.
func optionalColumn(cols map[string]bool, col, fallback string) string {
	if cols[col] {
		return col
	}
	return fallback + " AS " + col
}
