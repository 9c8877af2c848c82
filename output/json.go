package output

import (
	"bufio"
	"encoding/json"
	"io"

	"inspection-scraper/models"
)

// JSONWriter writes the result set as one object keyed by business name.
type JSONWriter struct {
	w      *bufio.Writer
	indent string
}

// NewJSONWriter creates a JSON writer. An empty indent writes compact JSON.
func NewJSONWriter(w io.Writer, indent string) *JSONWriter {
	return &JSONWriter{w: bufio.NewWriter(w), indent: indent}
}

func (w *JSONWriter) WriteResultSet(rs *models.ResultSet) error {
	enc := json.NewEncoder(w.w)
	enc.SetIndent("", w.indent)
	if err := enc.Encode(rs); err != nil {
		return err
	}
	return w.Flush()
}

func (w *JSONWriter) Flush() error {
	return w.w.Flush()
}

// JSONLWriter writes one record per line, in result set order.
type JSONLWriter struct {
	w *bufio.Writer
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: bufio.NewWriter(w)}
}

func (w *JSONLWriter) WriteResultSet(rs *models.ResultSet) error {
	for _, r := range rs.Records() {
		line, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := w.w.Write(line); err != nil {
			return err
		}
		if err := w.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}

func (w *JSONLWriter) Flush() error {
	return w.w.Flush()
}
