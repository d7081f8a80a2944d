// Package indexmeta persists the per-repository IndexMetadata singleton: the
// embedding model identity chunks were written with, and the per-file
// hash/chunk-id bookkeeping incremental indexing depends on.
package indexmeta

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/codelens-dev/codelens/internal/errs"
)

const currentSchemaVersion = "1"

// FileEntry is the per-file bookkeeping entry in fileHashes.
type FileEntry struct {
	FileHash string   `json:"file_hash"`
	ChunkIDs []string `json:"chunk_ids"`
}

// Metadata is the per-repository singleton document this package persists.
// EmbedModelID, EmbedDim, and EmbedProvider are frozen at first write; every
// later write must match them or the caller is mixing embedding models.
type Metadata struct {
	EmbedModelID  string               `json:"embed_model_id"`
	EmbedDim      int                  `json:"embed_dim"`
	EmbedProvider string               `json:"embed_provider"`
	SchemaVersion string               `json:"schema_version"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	FileHashes    map[string]FileEntry `json:"file_hashes"`
}

func metadataPath(indexDir string) string {
	return filepath.Join(indexDir, "metadata.json")
}

// Load reads metadata.json from indexDir. A missing file is not an error: it
// reports ok=false so callers can distinguish "no index yet" from corruption.
func Load(indexDir string) (*Metadata, bool, error) {
	data, err := os.ReadFile(metadataPath(indexDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errs.Wrap(errs.StoreError, "failed to read index metadata", err)
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false, errs.Wrap(errs.IndexCorrupted, "index metadata is not valid JSON", err)
	}
	if m.FileHashes == nil {
		m.FileHashes = make(map[string]FileEntry)
	}
	return &m, true, nil
}

// New creates an empty Metadata for a freshly created index, freezing the
// embedding model identity for the index's lifetime.
func New(modelID, provider string, dim int) *Metadata {
	now := timeNow()
	return &Metadata{
		EmbedModelID:  modelID,
		EmbedDim:      dim,
		EmbedProvider: provider,
		SchemaVersion: currentSchemaVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
		FileHashes:    make(map[string]FileEntry),
	}
}

// CheckModel validates that (modelID, dim) matches what this index was built
// with, returning a ModelMismatch error otherwise.
func (m *Metadata) CheckModel(modelID string, dim int) error {
	if m.EmbedModelID != modelID || m.EmbedDim != dim {
		return errs.New(errs.ModelMismatch, fmt.Sprintf(
			"index was built with model %q (dim %d), current embedder is %q (dim %d)",
			m.EmbedModelID, m.EmbedDim, modelID, dim,
		))
	}
	return nil
}

// CheckSchema validates the stored schema version is the one this build
// understands, returning a SchemaMismatch error otherwise.
func (m *Metadata) CheckSchema() error {
	if m.SchemaVersion != currentSchemaVersion {
		return errs.New(errs.SchemaMismatch, fmt.Sprintf(
			"index schema version %q is incompatible with supported version %q; rebuild required",
			m.SchemaVersion, currentSchemaVersion,
		))
	}
	return nil
}

// Save writes metadata to indexDir/metadata.json atomically: write to a temp
// file in the same directory, then rename, so readers never observe a
// partially written document.
func (m *Metadata) Save(indexDir string) error {
	if err := os.MkdirAll(indexDir, 0755); err != nil {
		return errs.Wrap(errs.StoreError, "failed to create index directory", err)
	}

	m.UpdatedAt = timeNow()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errs.Wrap(errs.StoreError, "failed to marshal index metadata", err)
	}

	path := metadataPath(indexDir)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errs.Wrap(errs.StoreError, "failed to write temp index metadata", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errs.Wrap(errs.StoreError, "failed to rename index metadata into place", err)
	}
	return nil
}

// Delete removes metadata.json from indexDir, if present.
func Delete(indexDir string) error {
	err := os.Remove(metadataPath(indexDir))
	if err != nil && !os.IsNotExist(err) {
		return errs.Wrap(errs.StoreError, "failed to delete index metadata", err)
	}
	return nil
}

// timeNow is a thin seam so tests can observe CreatedAt/UpdatedAt ordering
// without depending on wall-clock granularity.
var timeNow = time.Now
