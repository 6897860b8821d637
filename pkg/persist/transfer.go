package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mklimuk/semester-pilot/pkg/model"
)

// BackupFileName is the default name of an exported state file.
const BackupFileName = "semester4_backup.json"

// ImportError explains why an import document was rejected.
type ImportError struct {
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid backup file: %s: %v", e.Reason, e.Err)
	}
	return "invalid backup file: " + e.Reason
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Export writes s as indented UTF-8 JSON.
func Export(w io.Writer, s *model.RootState) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to export state: %w", err)
	}
	return nil
}

// ExportFile writes s to path, creating parent directories.
func ExportFile(path string, s *model.RootState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := Export(f, s); err != nil {
		return err
	}
	return f.Close()
}

// DecodeImport parses an exported document. It accepts only documents that
// carry both a user profile and an academics list.
func DecodeImport(r io.Reader) (*model.RootState, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &ImportError{Reason: "not a JSON object", Err: err}
	}
	for _, required := range []string{"user", "academics"} {
		raw, ok := fields[required]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, &ImportError{Reason: fmt.Sprintf("missing %q", required)}
		}
	}

	var s model.RootState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &ImportError{Reason: "unexpected content", Err: err}
	}
	if s.SchemaVersion == 0 {
		s.SchemaVersion = model.CurrentSchemaVersion
	}
	if err := s.Validate(); err != nil {
		return nil, &ImportError{Reason: "inconsistent state", Err: err}
	}
	return &s, nil
}

// ImportFile reads and validates the document at path.
func ImportFile(path string) (*model.RootState, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()
	return DecodeImport(f)
}
