// Package artifact persists generated tools and documents under a per-tool
// directory and reads them back.
package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/verustcode/docsynth/consts"
	"github.com/verustcode/docsynth/internal/toc"
	"github.com/verustcode/docsynth/internal/tool"
	"github.com/verustcode/docsynth/pkg/errors"
	"github.com/verustcode/docsynth/pkg/fsname"
	"github.com/verustcode/docsynth/pkg/logger"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// Context lists the document types sampled for a tool
type Context struct {
	ToolName      string   `json:"tool_name"`
	DocumentTypes []string `json:"document_types"`
}

// Writer stores artifacts below a root directory:
//
//	<root>/<tool>/<tool>.json
//	<root>/<tool>/context.json
//	<root>/<tool>/toc_<document>.json
//	<root>/<tool>/<document>.html
//	<root>/<tool>/<document>_metadata.json
//	<root>/<tool>/<document>_issue_plan.json
//
// <document> is the normalized document type, so a generator that reuses a
// TOC id across documents cannot make them overwrite each other.
type Writer struct {
	root string
}

// NewWriter creates a writer rooted at dir, creating it if needed
func NewWriter(dir string) (*Writer, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New(errors.ErrCodePersistence, "output directory is empty")
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, "failed to create output directory", err)
	}
	return &Writer{root: dir}, nil
}

// Root returns the output root directory
func (w *Writer) Root() string {
	return w.root
}

// ToolDir returns the directory holding a tool's artifacts
func (w *Writer) ToolDir(toolName string) (string, error) {
	name := fsname.Normalize(toolName)
	if name == "" {
		return "", errors.Newf(errors.ErrCodePersistence, "tool name %q has no filesystem-safe characters", toolName)
	}
	return filepath.Join(w.root, name), nil
}

// SaveTool writes the tool profile
func (w *Writer) SaveTool(t *tool.Tool) (string, error) {
	dir, err := w.ToolDir(t.Name)
	if err != nil {
		return "", err
	}
	return writeJSON(filepath.Join(dir, filepath.Base(dir)+".json"), t)
}

// SaveContext writes the tool name and its sampled document types
func (w *Writer) SaveContext(toolName string, documentTypes []string) (string, error) {
	dir, err := w.ToolDir(toolName)
	if err != nil {
		return "", err
	}
	return writeJSON(filepath.Join(dir, consts.ContextFileName), Context{
		ToolName:      toolName,
		DocumentTypes: documentTypes,
	})
}

// SaveTOC writes a document's TOC as toc_<document>.json
func (w *Writer) SaveTOC(toolName, documentType string, t *toc.TOC) (string, error) {
	path, err := w.documentPath(toolName, consts.TOCPrefix+fsname.Normalize(documentType), ".json")
	if err != nil {
		return "", err
	}
	return writeJSON(path, t)
}

// SaveHTML writes the assembled document as <document>.html
func (w *Writer) SaveHTML(toolName, documentType, html string) (string, error) {
	path, err := w.documentPath(toolName, fsname.Normalize(documentType), ".html")
	if err != nil {
		return "", err
	}
	return writeFile(path, []byte(html))
}

// SaveMetadata writes the metadata bundle as <document>_metadata.json, keyed by m.Document.Type
func (w *Writer) SaveMetadata(toolName string, m *Metadata) (string, error) {
	path, err := w.documentPath(toolName, fsname.Normalize(m.Document.Type), consts.MetadataSuffix)
	if err != nil {
		return "", err
	}
	return writeJSON(path, m)
}

// SaveIssuePlan writes the planned section ids, sorted, as <document>_issue_plan.json
func (w *Writer) SaveIssuePlan(toolName, documentType, documentID string, sectionIDs []string) (string, error) {
	path, err := w.documentPath(toolName, fsname.Normalize(documentType), consts.IssuePlanSuffix)
	if err != nil {
		return "", err
	}
	ids := slices.Clone(sectionIDs)
	if ids == nil {
		ids = []string{}
	}
	slices.Sort(ids)
	return writeJSON(path, IssuePlan{DocumentID: documentID, SectionsWithIssues: ids})
}

func (w *Writer) documentPath(toolName, base, suffix string) (string, error) {
	dir, err := w.ToolDir(toolName)
	if err != nil {
		return "", err
	}
	if base == "" || base == consts.TOCPrefix {
		return "", errors.Newf(errors.ErrCodePersistence, "document name for tool %q is empty", toolName)
	}
	return filepath.Join(dir, base+suffix), nil
}

// LoadTool reads a tool profile by display or normalized name
func (w *Writer) LoadTool(toolName string) (*tool.Tool, error) {
	dir, err := w.ToolDir(toolName)
	if err != nil {
		return nil, err
	}
	var t tool.Tool
	if err := readJSON(filepath.Join(dir, filepath.Base(dir)+".json"), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadTOC reads the TOC saved for a tool and document type
func (w *Writer) LoadTOC(toolName, documentType string) (*toc.TOC, error) {
	path, err := w.documentPath(toolName, consts.TOCPrefix+fsname.Normalize(documentType), ".json")
	if err != nil {
		return nil, err
	}
	var t toc.TOC
	if err := readJSON(path, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadHTML reads the assembled document for a tool and document type
func (w *Writer) LoadHTML(toolName, documentType string) (string, error) {
	path, err := w.documentPath(toolName, fsname.Normalize(documentType), ".html")
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", readError(path, err)
	}
	return string(data), nil
}

// LoadMetadata reads the metadata bundle saved for a tool and document type
func (w *Writer) LoadMetadata(toolName, documentType string) (*Metadata, error) {
	path, err := w.documentPath(toolName, fsname.Normalize(documentType), consts.MetadataSuffix)
	if err != nil {
		return nil, err
	}
	var m Metadata
	if err := readJSON(path, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadIssuePlan reads the issue plan saved for a tool and document type
func (w *Writer) LoadIssuePlan(toolName, documentType string) (*IssuePlan, error) {
	path, err := w.documentPath(toolName, fsname.Normalize(documentType), consts.IssuePlanSuffix)
	if err != nil {
		return nil, err
	}
	var p IssuePlan
	if err := readJSON(path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListTools returns the normalized names of every saved tool, sorted
func (w *Writer) ListTools() ([]string, error) {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, "failed to list output directory", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(w.root, e.Name(), e.Name()+".json")); err == nil {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// ListDocuments returns the normalized document names that have a saved TOC, sorted
func (w *Writer) ListDocuments(toolName string) ([]string, error) {
	dir, err := w.ToolDir(toolName)
	if err != nil {
		return nil, err
	}
	matches, err := filepath.Glob(filepath.Join(dir, consts.TOCPrefix+"*.json"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, "failed to list documents", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ".json")
		names = append(names, strings.TrimPrefix(base, consts.TOCPrefix))
	}
	slices.Sort(names)
	return names, nil
}

func writeJSON(path string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodePersistence, "failed to encode "+filepath.Base(path), err)
	}
	return writeFile(path, append(data, '\n'))
}

func writeFile(path string, data []byte) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return "", errors.Wrap(errors.ErrCodePersistence, "failed to create directory", err)
	}
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return "", errors.Wrap(errors.ErrCodePersistence, "failed to write "+filepath.Base(path), err)
	}
	logger.Debug("Artifact written", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return readError(path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, "failed to decode "+filepath.Base(path), err)
	}
	return nil
}

func readError(path string, err error) error {
	if os.IsNotExist(err) {
		return errors.ErrNotFound(path)
	}
	return errors.Wrap(errors.ErrCodePersistence, "failed to read "+filepath.Base(path), err)
}
