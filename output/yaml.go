package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"

	"inspection-scraper/models"
)

// YAMLWriter writes the result set as a mapping keyed by business name.
type YAMLWriter struct {
	w *bufio.Writer
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{w: bufio.NewWriter(w)}
}

func (w *YAMLWriter) WriteResultSet(rs *models.ResultSet) error {
	doc := make(map[string]any, rs.Len())
	for _, name := range rs.Names() {
		r, _ := rs.Get(name)
		doc[name] = r.Fields()
	}

	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	return w.Flush()
}

func (w *YAMLWriter) Flush() error {
	return w.w.Flush()
}
