package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"aetherlens/internal/errors"
	"aetherlens/ports"
)

// wrapperPaths are probed in order when no explicit data path is
// configured. Captured responses from the assistant API wrap the evidence
// object inconsistently depending on which endpoint produced them.
var wrapperPaths = []string{"evidence", "data.evidence", "insight.evidence"}

// idPaths are probed for the insight identifier when the configured path
// yields nothing.
var idPaths = []string{"insight_id", "id", "insight.id"}

// Source reads captured evidence payloads from a JSON file, an NDJSON
// file, or a directory of either.
type Source struct {
	path          string
	dataPath      string
	insightIDPath string
}

// NewSource creates a file-backed evidence source.
// dataPath is a gjson path to the evidence object inside each document;
// empty means probe the well-known wrapper paths and fall back to the
// document root.
func NewSource(path, dataPath, insightIDPath string) *Source {
	return &Source{path: path, dataPath: dataPath, insightIDPath: insightIDPath}
}

// Read loads every document under the configured path and unwraps it into
// envelopes. Unreadable files abort the read; documents that hold no JSON
// object are skipped.
func (s *Source) Read(ctx context.Context) ([]ports.Envelope, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, errors.SourceError(s.path, err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(s.path)
		if err != nil {
			return nil, errors.SourceError(s.path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if ext == ".json" || ext == ".ndjson" || ext == ".jsonl" {
				files = append(files, filepath.Join(s.path, entry.Name()))
			}
		}
	} else {
		files = []string{s.path}
	}

	var envelopes []ports.Envelope
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fileEnvelopes, err := s.readFile(path)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, fileEnvelopes...)
	}
	return envelopes, nil
}

func (s *Source) readFile(path string) ([]ports.Envelope, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".ndjson" || ext == ".jsonl" {
		return s.readLines(path)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.SourceError(path, err)
	}
	return s.unwrap(body, filepath.Base(path)), nil
}

func (s *Source) readLines(path string) ([]ports.Envelope, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.SourceError(path, err)
	}
	defer f.Close()

	var envelopes []ports.Envelope
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		fallbackID := fmt.Sprintf("%s:%d", filepath.Base(path), line)
		envelopes = append(envelopes, s.unwrap([]byte(raw), fallbackID)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.SourceError(path, err)
	}
	return envelopes, nil
}

// unwrap extracts the evidence object(s) from one captured document.
// The document may be the evidence object itself, a wrapper around it, or
// an array of either.
func (s *Source) unwrap(body []byte, fallbackID string) []ports.Envelope {
	root := gjson.ParseBytes(body)
	if root.IsArray() {
		var envelopes []ports.Envelope
		for i, element := range root.Array() {
			id := fmt.Sprintf("%s[%d]", fallbackID, i)
			if env, ok := s.unwrapObject(element, id); ok {
				envelopes = append(envelopes, env)
			}
		}
		return envelopes
	}
	if env, ok := s.unwrapObject(root, fallbackID); ok {
		return []ports.Envelope{env}
	}
	return nil
}

func (s *Source) unwrapObject(doc gjson.Result, fallbackID string) (ports.Envelope, bool) {
	if !doc.IsObject() {
		return ports.Envelope{}, false
	}

	payload := doc
	if s.dataPath != "" {
		if inner := doc.Get(s.dataPath); inner.IsObject() {
			payload = inner
		}
	} else {
		for _, wrapper := range wrapperPaths {
			if inner := doc.Get(wrapper); inner.IsObject() {
				payload = inner
				break
			}
		}
	}

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(payload.Raw), &obj); err != nil {
		return ports.Envelope{}, false
	}

	return ports.Envelope{
		InsightID: s.insightID(doc, fallbackID),
		Payload:   obj,
	}, true
}

func (s *Source) insightID(doc gjson.Result, fallbackID string) string {
	if s.insightIDPath != "" {
		if id := doc.Get(s.insightIDPath); id.Exists() && id.String() != "" {
			return id.String()
		}
	}
	for _, path := range idPaths {
		if id := doc.Get(path); id.Exists() && id.String() != "" {
			return id.String()
		}
	}
	return fallbackID
}
