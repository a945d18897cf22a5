package report

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Load reads and fully validates a document. Validation happens before
// the document is visible to any downstream stage; a failure is always a
// *MalformedDocumentError naming the file and field.
func Load(path string) (*Document, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read document %s", path)
	}
	return Parse(data, path)
}

// Parse decodes and validates a document from raw bytes. The path is
// used only for diagnostics.
func Parse(data []byte, path string) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedDocumentError{
			Path:   path,
			Field:  "(document)",
			Reason: err.Error(),
		}
	}
	doc.Path = path
	if err := doc.validate(); err != nil {
		return nil, err
	}
	if doc.Metrics == nil {
		doc.Metrics = map[string]Value{}
	}
	return &doc, nil
}

func (d *Document) validate() error {
	if d.Metadata.Mode == "" {
		return &MalformedDocumentError{
			Path:   d.Path,
			Field:  "metadata.mode",
			Reason: "missing",
		}
	}
	valid := false
	for _, m := range ValidModes {
		if d.Metadata.Mode == m {
			valid = true
			break
		}
	}
	if !valid {
		return &MalformedDocumentError{
			Path:   d.Path,
			Field:  "metadata.mode",
			Reason: "must be one of synthetic, real",
		}
	}
	for _, family := range d.SortedRawFamilies() {
		if len(d.RawSamples[family]) == 0 {
			return &MalformedDocumentError{
				Path:   d.Path,
				Field:  "raw_samples_ms." + family,
				Reason: "sample array must not be empty",
			}
		}
	}
	for _, key := range d.SortedMetricKeys() {
		if s, ok := d.Metrics[key].SeriesValue(); ok && s.Count < 1 {
			return &MalformedDocumentError{
				Path:   d.Path,
				Field:  "metrics." + key + ".count",
				Reason: "series count must be >= 1",
			}
		}
	}
	return nil
}

// Write persists a document as pretty-printed JSON, creating parent
// directories as needed. Result files are overwritten each run; the
// gate keeps no history of its own.
func Write(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode document %s", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "create results directory %s", dir)
		}
	}
	if err := ioutil.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.Wrapf(err, "write document %s", path)
	}
	return nil
}
