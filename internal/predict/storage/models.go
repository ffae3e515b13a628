// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventpulse/internal/classifier"
	"github.com/tomtom215/eventpulse/internal/features"
	"github.com/tomtom215/eventpulse/internal/training"
)

// Artifact suffixes.
const (
	modelSuffix   = ".model.gob.gz"
	columnsSuffix = ".columns.json"
	metaSuffix    = ".meta.json"
)

// ErrNotFound is returned when no stored model matches a request.
var ErrNotFound = errors.New("model not found")

// ModelMetadata contains information about a stored model.
type ModelMetadata struct {
	// Name is the model name (e.g., "event_success_v2").
	Name string `json:"name"`

	// Version is the storage version (monotonically increasing).
	Version int `json:"version"`

	// ModelVersion is the semantic version the model was trained as.
	ModelVersion string `json:"model_version"`

	// RunID identifies the training run.
	RunID string `json:"run_id"`

	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the model was saved.
	SavedAt time.Time `json:"saved_at"`

	// Checksum is the SHA-256 checksum of the uncompressed model data.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed model size in bytes.
	SizeBytes int64 `json:"size_bytes"`

	Samples     int                     `json:"samples"`
	Config      training.Config         `json:"config"`
	Params      classifier.Params       `json:"params"`
	Metrics     training.Metrics        `json:"metrics"`
	Importances []classifier.Importance `json:"importances"`
}

// columnsFile is the on-disk format of the column artifact.
type columnsFile struct {
	Columns            []string            `json:"columns"`
	Stats              features.BatchStats `json:"stats"`
	FeatureEngineering bool                `json:"feature_engineering"`
}

// Store manages model persistence.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// Latest version per model name
	versions map[string]int
}

// NewStore creates a model store at the given directory, creating it if needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}

	if err := s.scanModels(); err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}

	return s, nil
}

// Dir returns the base directory.
func (s *Store) Dir() string {
	return s.baseDir
}

// scanModels records the latest version of every model with a metadata file.
func (s *Store) scanModels() error {
	found, err := s.scanVersions("")
	if err != nil {
		return err
	}
	for name, versions := range found {
		s.versions[name] = versions[0]
	}
	return nil
}

// scanVersions lists stored versions per model name, newest first. An empty
// filter returns every name.
func (s *Store) scanVersions(filter string) (map[string][]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	found := make(map[string][]int)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), metaSuffix) {
			continue
		}
		name, version := parseModelFilename(strings.TrimSuffix(entry.Name(), metaSuffix))
		if name == "" || (filter != "" && name != filter) {
			continue
		}
		found[name] = append(found[name], version)
	}
	for name := range found {
		sort.Sort(sort.Reverse(sort.IntSlice(found[name])))
	}
	return found, nil
}

// parseModelFilename extracts the model name and version from "name_v3".
func parseModelFilename(base string) (name string, version int) {
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0
	}
	v, err := strconv.Atoi(base[idx+2:])
	if err != nil || v <= 0 {
		return "", 0
	}
	return base[:idx], v
}

// Save writes a new version of the model and returns its metadata.
func (s *Store) Save(ctx context.Context, m *training.TrainedModel) (*ModelMetadata, error) {
	if m == nil || m.Forest == nil {
		return nil, fmt.Errorf("save model: model has no fitted forest")
	}
	if strings.ContainsAny(m.Name, `/\`) || m.Name == "" {
		return nil, fmt.Errorf("save model: invalid name %q", m.Name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(m.Forest); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	hash := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return nil, fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	columns, err := json.MarshalIndent(columnsFile{
		Columns:            m.Columns,
		Stats:              m.Stats,
		FeatureEngineering: m.Config.FeatureEngineering,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode columns: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	version := s.versions[m.Name] + 1
	meta := ModelMetadata{
		Name:         m.Name,
		Version:      version,
		ModelVersion: m.Version,
		RunID:        m.RunID,
		TrainedAt:    m.TrainedAt,
		SavedAt:      time.Now().UTC(),
		Checksum:     hex.EncodeToString(hash[:]),
		SizeBytes:    int64(compressed.Len()),
		Samples:      m.Samples,
		Config:       m.Config,
		Params:       m.Params,
		Metrics:      m.Metrics,
		Importances:  m.Importances,
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	base := s.basePath(m.Name, version)
	if err := writeFileAtomic(base+modelSuffix, compressed.Bytes()); err != nil {
		return nil, fmt.Errorf("write model file: %w", err)
	}
	if err := writeFileAtomic(base+columnsSuffix, columns); err != nil {
		return nil, fmt.Errorf("write columns file: %w", err)
	}
	if err := writeFileAtomic(base+metaSuffix, metaBytes); err != nil {
		return nil, fmt.Errorf("write metadata file: %w", err)
	}

	s.versions[m.Name] = version
	return &meta, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil { //nolint:gosec // path is built from the store directory
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads a model by name and version. Version 0 loads the latest.
// The returned model has generation 0; callers assign their own.
func (s *Store) Load(ctx context.Context, name string, version int) (*training.TrainedModel, *ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var ok bool
		version, ok = s.versions[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: no versions of %s", ErrNotFound, name)
		}
	}

	base := s.basePath(name, version)
	meta, err := readMeta(base + metaSuffix)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s version %d", ErrNotFound, name, version)
		}
		return nil, nil, err
	}

	var cols columnsFile
	colBytes, err := os.ReadFile(base + columnsSuffix) //nolint:gosec // path is built from the store directory
	if err != nil {
		return nil, nil, fmt.Errorf("read columns file: %w", err)
	}
	if err := json.Unmarshal(colBytes, &cols); err != nil {
		return nil, nil, fmt.Errorf("decode columns: %w", err)
	}

	forest, err := readForest(base+modelSuffix, meta.Checksum)
	if err != nil {
		return nil, nil, err
	}
	if forest.NFeatures != len(cols.Columns) {
		return nil, nil, fmt.Errorf("model expects %d features but column file lists %d", forest.NFeatures, len(cols.Columns))
	}

	cfg := meta.Config
	cfg.FeatureEngineering = cols.FeatureEngineering
	return &training.TrainedModel{
		Name:        meta.Name,
		Version:     meta.ModelVersion,
		RunID:       meta.RunID,
		TrainedAt:   meta.TrainedAt,
		Forest:      forest,
		Columns:     cols.Columns,
		Stats:       cols.Stats,
		Config:      cfg,
		Params:      meta.Params,
		Metrics:     meta.Metrics,
		Importances: meta.Importances,
		Samples:     meta.Samples,
	}, meta, nil
}

func readMeta(path string) (*ModelMetadata, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is built from the store directory
	if err != nil {
		return nil, err
	}
	var meta ModelMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &meta, nil
}

func readForest(path, checksum string) (*classifier.Forest, error) {
	f, err := os.Open(path) //nolint:gosec // path is built from the store directory
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(raw)
	if got := hex.EncodeToString(hash[:]); got != checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", checksum, got)
	}

	var forest classifier.Forest
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&forest); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &forest, nil
}

// LatestVersion returns the latest stored version of a model.
func (s *Store) LatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, ok := s.versions[name]
	return version, ok
}

// List returns metadata for every stored version of name, newest first.
// An empty name lists all models.
func (s *Store) List(ctx context.Context, name string) ([]ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	found, err := s.scanVersions(name)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	names := make([]string, 0, len(found))
	for n := range found {
		names = append(names, n)
	}
	sort.Strings(names)

	var out []ModelMetadata
	for _, n := range names {
		for _, v := range found[n] {
			meta, err := readMeta(s.basePath(n, v) + metaSuffix)
			if err != nil {
				continue
			}
			out = append(out, *meta)
		}
	}
	return out, nil
}

// Delete removes every artifact of one version.
func (s *Store) Delete(ctx context.Context, name string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.basePath(name, version)
	if err := os.Remove(base + metaSuffix); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s version %d", ErrNotFound, name, version)
		}
		return fmt.Errorf("delete model: %w", err)
	}
	_ = os.Remove(base + modelSuffix)   //nolint:errcheck // metadata removal already hid the version
	_ = os.Remove(base + columnsSuffix) //nolint:errcheck // metadata removal already hid the version

	if s.versions[name] == version {
		found, err := s.scanVersions(name)
		if err != nil {
			return fmt.Errorf("read directory: %w", err)
		}
		if vs := found[name]; len(vs) > 0 {
			s.versions[name] = vs[0]
		} else {
			delete(s.versions, name)
		}
	}
	return nil
}

// Prune removes old versions of name, keeping the newest keep versions.
// It returns the number of versions removed.
func (s *Store) Prune(ctx context.Context, name string, keep int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if keep < 1 {
		keep = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := s.scanVersions(name)
	if err != nil {
		return 0, fmt.Errorf("read directory: %w", err)
	}

	removed := 0
	versions := found[name]
	for i := keep; i < len(versions); i++ {
		base := s.basePath(name, versions[i])
		if err := os.Remove(base + metaSuffix); err != nil {
			continue
		}
		_ = os.Remove(base + modelSuffix)   //nolint:errcheck // best-effort cleanup of old versions
		_ = os.Remove(base + columnsSuffix) //nolint:errcheck // best-effort cleanup of old versions
		removed++
	}
	return removed, nil
}

// ModelPath returns the path of the model artifact for a version.
func (s *Store) ModelPath(name string, version int) string {
	return s.basePath(name, version) + modelSuffix
}

func (s *Store) basePath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d", name, version))
}
