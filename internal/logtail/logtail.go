package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
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
			lines = append(lines, scanner.Text())
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
		ring[idx] = scanner.Text()
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

// Entry is one decoded zerolog line.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Error   string
	Fields  map[string]any
	Raw     string
}

// Field returns a field rendered as text.
func (e Entry) Field(key string) string {
	v, ok := e.Fields[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// FieldKeys returns the extra field names in sorted order.
func (e Entry) FieldKeys() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Parse decodes a zerolog JSON line. Anything else becomes an entry whose
// message is the raw line.
func Parse(line string) Entry {
	e := Entry{Raw: line}
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		e.Message = line
		return e
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		e.Message = line
		return e
	}

	if v, ok := fields["level"].(string); ok {
		e.Level = strings.ToUpper(v)
		delete(fields, "level")
	}
	if v, ok := fields["message"].(string); ok {
		e.Message = v
		delete(fields, "message")
	}
	if v, ok := fields["error"].(string); ok {
		e.Error = v
		delete(fields, "error")
	}
	if v, ok := fields["time"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			e.Time = ts
			delete(fields, "time")
		}
	}
	if len(fields) > 0 {
		e.Fields = fields
	}
	return e
}

// ParseLines decodes every line.
func ParseLines(lines []string) []Entry {
	out := make([]Entry, len(lines))
	for i, l := range lines {
		out[i] = Parse(l)
	}
	return out
}
