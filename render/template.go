package render

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultMarker starts a data line.
const DefaultMarker = '*'

// DateLayout formats the {date} placeholder.
const DateLayout = time.RFC3339

// Template is a parsed line template.
type Template struct {
	Name   string
	Lines  []string
	Marker byte
}

// Params carries the values substituted into a template.
type Params struct {
	// Values holds named placeholders such as "spec" or "table".
	Values map[string]string
	// Date is rendered by {date}. The zero time renders as an empty string.
	Date time.Time
}

// Parse splits text into template lines using the default marker. A single
// trailing newline does not produce an extra empty line.
func Parse(name, text string) *Template {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return &Template{
		Name:   name,
		Lines:  strings.Split(text, "\n"),
		Marker: DefaultMarker,
	}
}

// Render writes the template expanded with values and params to w.
func (t *Template) Render(w io.Writer, values []float64, params Params) error {
	marker := t.Marker
	if marker == 0 {
		marker = DefaultMarker
	}

	bw := bufio.NewWriter(w)
	date := ""
	if !params.Date.IsZero() {
		date = params.Date.Format(DateLayout)
	}

	for _, line := range t.Lines {
		if len(line) > 0 && line[0] == marker {
			body := line[1:]
			for i, v := range values {
				ctx := lineContext{
					params: params.Values,
					date:   date,
					data:   true,
					value:  FormatValue(v),
					index:  i,
					last:   i == len(values)-1,
				}
				if _, err := bw.WriteString(expand(body, ctx)); err != nil {
					return err
				}
				if err := bw.WriteByte('\n'); err != nil {
					return err
				}
			}
			continue
		}

		ctx := lineContext{params: params.Values, date: date}
		if _, err := bw.WriteString(expand(line, ctx)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// String renders the template into a string.
func (t *Template) String(values []float64, params Params) (string, error) {
	var sb strings.Builder
	if err := t.Render(&sb, values, params); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name, err)
	}
	return sb.String(), nil
}

// FormatValue prints integral values without a fractional part and all
// others in the shortest representation that round-trips.
func FormatValue(v float64) string {
	if v == 0 {
		return "0"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type lineContext struct {
	params map[string]string
	date   string
	data   bool
	value  string
	index  int
	last   bool
}

func (c lineContext) lookup(key string) (string, bool) {
	if c.data {
		switch {
		case key == "value":
			return c.value, true
		case key == "index":
			return strconv.Itoa(c.index), true
		case strings.HasPrefix(key, "sep:"):
			if c.last {
				return "", true
			}
			return key[len("sep:"):], true
		case strings.HasPrefix(key, "last:"):
			if !c.last {
				return "", true
			}
			return key[len("last:"):], true
		}
	}
	if key == "date" {
		return c.date, true
	}
	v, ok := c.params[key]
	return v, ok
}

// expand replaces every resolvable {key} in line.
func expand(line string, ctx lineContext) string {
	var sb strings.Builder
	for {
		open := strings.IndexByte(line, '{')
		if open < 0 {
			sb.WriteString(line)
			return sb.String()
		}
		end := strings.IndexByte(line[open+1:], '}')
		if end < 0 {
			sb.WriteString(line)
			return sb.String()
		}
		end += open + 1

		sb.WriteString(line[:open])
		if v, ok := ctx.lookup(line[open+1 : end]); ok {
			sb.WriteString(v)
			line = line[end+1:]
			continue
		}
		// Unresolved: keep the brace and rescan after it.
		sb.WriteByte('{')
		line = line[open+1:]
	}
}
