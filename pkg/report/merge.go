package report

import "github.com/pkg/errors"

// Merge combines independently produced partial documents into one
// unified snapshot. Later documents win on metric-key collision, so the
// caller supplies phases most-specific-last (main suite, then cold-start
// aggregate, then cold-start raw samples). Raw sample families must be
// disjoint across inputs: two phases never measure the same family, and
// a collision is reported as *DuplicateRawFamilyError.
//
// Merge is a pure transform: inputs are not modified, and nothing is
// produced unless every input is structurally sound.
func Merge(docs []*Document) (*Document, error) {
	if len(docs) == 0 {
		return nil, errors.New("merge: no input documents")
	}

	merged := &Document{
		Metadata:   docs[0].Metadata,
		Metrics:    map[string]Value{},
		RawSamples: map[string][]float64{},
	}
	for _, doc := range docs {
		for key, v := range doc.Metrics {
			merged.Metrics[key] = v
		}
		for family, samples := range doc.RawSamples {
			if _, exists := merged.RawSamples[family]; exists {
				return nil, &DuplicateRawFamilyError{
					Family: family,
					Path:   doc.Path,
				}
			}
			out := make([]float64, len(samples))
			copy(out, samples)
			merged.RawSamples[family] = out
		}
		// The main suite's metadata leads; later phases only fill in
		// what it left empty.
		if merged.Metadata.Mode == "" {
			merged.Metadata.Mode = doc.Metadata.Mode
		}
		if merged.Metadata.Iterations == 0 {
			merged.Metadata.Iterations = doc.Metadata.Iterations
		}
		if merged.Metadata.Note == "" {
			merged.Metadata.Note = doc.Metadata.Note
		}
	}
	if len(merged.RawSamples) == 0 {
		merged.RawSamples = nil
	}
	return merged, nil
}
