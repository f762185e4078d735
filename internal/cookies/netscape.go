package cookies

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/laurynn-wl/cookie-project/pkg/cookielib"
	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

const httpOnlyPrefix = "#HttpOnly_"

// ParseNetscape reads every unexpired cookie from a Netscape-format cookie file.
// Lines starting with # are skipped, except #HttpOnly_ which sets the HttpOnly
// flag. Malformed lines are skipped with a warning; the line itself is never
// logged since it carries the value.
func ParseNetscape(filePath string, now time.Time, l logger.Logger) ([]cookielib.Cookie, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error: cannot open Netscape cookie file: %w", err)
	}
	defer f.Close()

	nowUnix := now.Unix()
	var cookies []cookielib.Cookie

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		httpOnly := false
		if strings.HasPrefix(line, httpOnlyPrefix) {
			httpOnly = true
			line = line[len(httpOnlyPrefix):]
		} else if strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			l.Warning("cookies: skipping malformed Netscape cookie line %d", lineNo)
			continue
		}
		expiry, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			l.Warning("cookies: skipping cookie %q with invalid expiry on line %d", fields[5], lineNo)
			continue
		}
		if expiry > 0 && expiry <= nowUnix {
			continue
		}

		domain := fields[0]
		includeSubdomains := strings.EqualFold(fields[1], "TRUE")
		if includeSubdomains && !strings.HasPrefix(domain, ".") {
			domain = "." + domain
		}
		c := cookielib.Cookie{
			Name:     fields[5],
			Value:    fields[6],
			Domain:   domain,
			Path:     fields[2],
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			HTTPOnly: httpOnly,
			HostOnly: !includeSubdomains,
		}
		if expiry > 0 {
			c.Expiration = &expiry
		}
		c.Normalize()
		cookies = append(cookies, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error: failed to read Netscape cookie file: %w", err)
	}
	return cookies, nil
}
