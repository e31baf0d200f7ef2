// Package manifest reads and writes the semantic version held in the
// application's JSON manifest (package.json).
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/openstay/openstay-release/internal/logging"
	"github.com/openstay/openstay-release/internal/semver"
)

// DefaultFileName is the manifest looked up at the project root.
const DefaultFileName = "package.json"

const versionKey = "version"

var (
	// ErrManifestRead is returned when the manifest is missing, unreadable,
	// or has no string version field.
	ErrManifestRead = errors.New("reading manifest")
	// ErrManifestWrite is returned when the manifest cannot be rewritten.
	ErrManifestWrite = errors.New("writing manifest")
)

// Store persists the project version inside a JSON manifest. There is no
// locking: concurrent writers race and the last rename wins.
type Store struct {
	path string
	log  *slog.Logger
}

// NewStore returns a Store for the manifest at path.
func NewStore(path string, log *slog.Logger) *Store {
	return &Store{path: path, log: logging.OrDiscard(log)}
}

// Path returns the manifest path.
func (s *Store) Path() string {
	return s.path
}

// Read returns the version recorded in the manifest.
func (s *Store) Read() (semver.SemanticVersion, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return semver.Zero, fmt.Errorf("%w %s: %w", ErrManifestRead, s.path, err)
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return semver.Zero, fmt.Errorf("%w %s: not a JSON object", ErrManifestRead, s.path)
	}

	field := gjson.GetBytes(data, versionKey)
	if !field.Exists() {
		return semver.Zero, fmt.Errorf("%w %s: no %q field", ErrManifestRead, s.path, versionKey)
	}
	if field.Type != gjson.String {
		return semver.Zero, fmt.Errorf("%w %s: %q is not a string", ErrManifestRead, s.path, versionKey)
	}

	return semver.Parse(field.Str)
}

// ReadOrDefault returns the manifest version, or 0.0.0 when it cannot be
// read. The failure is logged as a warning.
func (s *Store) ReadOrDefault() semver.SemanticVersion {
	v, err := s.Read()
	if err != nil {
		s.log.Warn("manifest version unavailable, using 0.0.0", "path", s.path, "err", err.Error())
		return semver.Zero
	}
	return v
}

// Write replaces the version value, leaving every other byte of the
// manifest as it was. A missing version field is added as the first key.
func (s *Store) Write(v semver.SemanticVersion) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrManifestWrite, s.path, err)
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return fmt.Errorf("%w %s: not a JSON object", ErrManifestWrite, s.path)
	}

	var out []byte
	if gjson.GetBytes(data, versionKey).Exists() {
		out, err = sjson.SetBytes(data, versionKey, v.String())
		if err != nil {
			return fmt.Errorf("%w %s: %w", ErrManifestWrite, s.path, err)
		}
	} else {
		out = insertFirstKey(data, versionKey, v.String())
	}

	if err := writeFileAtomic(s.path, out); err != nil {
		return fmt.Errorf("%w %s: %w", ErrManifestWrite, s.path, err)
	}
	s.log.Debug("manifest updated", "path", s.path, "version", v.String())
	return nil
}

// insertFirstKey adds "key": "value" right after the opening brace, reusing
// the whitespace that precedes the existing first key.
func insertFirstKey(data []byte, key, value string) []byte {
	open := bytes.IndexByte(data, '{')
	rest := data[open+1:]
	body := bytes.TrimLeft(rest, " \t\r\n")
	indent := rest[:len(rest)-len(body)]

	field := fmt.Sprintf("%q: %q", key, value)

	var b bytes.Buffer
	b.Write(data[:open+1])
	if len(body) > 0 && body[0] == '}' {
		b.WriteString(field)
		b.Write(rest)
		return b.Bytes()
	}
	b.Write(indent)
	b.WriteString(field)
	b.WriteByte(',')
	b.Write(rest)
	return b.Bytes()
}

// writeFileAtomic writes data to a temp file next to path and renames it
// over path, keeping the original file mode.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
