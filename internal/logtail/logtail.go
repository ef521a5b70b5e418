package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Level is the severity parsed from a log line.
type Level string

// Levels written by the humanlog handler.
const (
	LevelNone  Level = ""
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	ansiPattern  = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	levelPattern = regexp.MustCompile(`^\[[^\]]*\]\s+(DEBUG|INFO|WARN|ERROR)\b`)
)

// Read returns at most maxLines from the end of the file at path, with ANSI
// color codes removed. maxLines <= 0 returns the whole file.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, Clean(scanner.Text()))
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = Clean(scanner.Text())
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Clean strips ANSI color sequences and trailing whitespace.
func Clean(line string) string {
	return strings.TrimRight(ansiPattern.ReplaceAllString(line, ""), " \t\r")
}

// ParseLevel reports the level of a "[time] LEVEL message" line.
func ParseLevel(line string) Level {
	m := levelPattern.FindStringSubmatch(line)
	if m == nil {
		return LevelNone
	}
	return Level(m[1])
}

// Match returns the indices of lines containing query, ignoring case.
func Match(lines []string, query string) []int {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}
	var hits []int
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), needle) {
			hits = append(hits, i)
		}
	}
	return hits
}

// FilterLevel keeps lines at or above min. Continuation lines without a
// level follow the line they belong to.
func FilterLevel(lines []string, min Level) []string {
	if rank(min) == 0 {
		return lines
	}
	out := make([]string, 0, len(lines))
	keep := false
	for _, line := range lines {
		if lvl := ParseLevel(line); lvl != LevelNone {
			keep = rank(lvl) >= rank(min)
		}
		if keep {
			out = append(out, line)
		}
	}
	return out
}

func rank(l Level) int {
	switch l {
	case LevelDebug:
		return 1
	case LevelInfo:
		return 2
	case LevelWarn:
		return 3
	case LevelError:
		return 4
	default:
		return 0
	}
}
