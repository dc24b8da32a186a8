// Package report serializes extraction results and error envelopes.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spherical/pdf-layout/internal/domain"
)

// Write encodes r as one indented JSON document. Text is written verbatim,
// without HTML escaping.
func Write(w io.Writer, r *domain.Report, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", indent)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return domain.IOError("Failed to write report", err)
	}
	return nil
}

// WriteError prints the error envelope {"error": "<message>"}.
func WriteError(w io.Writer, message string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(message); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "{\"error\": %s}\n", bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return err
}
