package btd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	yaml "gopkg.in/yaml.v3"

	"github.com/reoring/btdconv/internal/jsontext"
)

// Source abstracts over polymorphic input documents. Decode returns the raw
// document as a tree of map[string]any / []any / json.Number / string / bool,
// suitable for schema-directed decoding by the parsers.
type Source interface {
	Decode() (map[string]any, error)
	// Name identifies the source for diagnostics ("<bytes>", a file path, ...).
	Name() string
}

// JSONBytes wraps a byte slice holding a JSON document.
func JSONBytes(b []byte) Source { return &jsonSource{r: bytes.NewReader(b), name: "<bytes>"} }

// JSONReader wraps an io.Reader producing a JSON document.
func JSONReader(r io.Reader) Source { return &jsonSource{r: r, name: "<reader>"} }

// YAMLBytes wraps a byte slice holding a YAML document. The decoded tree is
// normalized into the same shape JSON decoding produces (string keys,
// json.Number numerics), so the parsers never see the difference.
func YAMLBytes(b []byte) Source { return &yamlSource{r: bytes.NewReader(b), name: "<bytes>"} }

// YAMLReader wraps an io.Reader producing a YAML document.
func YAMLReader(r io.Reader) Source { return &yamlSource{r: r, name: "<reader>"} }

// File opens path and picks the codec from its extension: .yaml/.yml decode
// as YAML, everything else (.json, .btd_th) as JSON.
func File(path string) Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return &fileSource{path: path, yaml: true}
	default:
		return &fileSource{path: path, yaml: false}
	}
}

type jsonSource struct {
	r    io.Reader
	name string
}

func (s *jsonSource) Name() string { return s.name }

func (s *jsonSource) Decode() (map[string]any, error) {
	dec := json.NewDecoder(s.r)
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, wrapSyntaxError(err)
	}
	return doc, nil
}

type yamlSource struct {
	r    io.Reader
	name string
}

func (s *yamlSource) Name() string { return s.name }

func (s *yamlSource) Decode() (map[string]any, error) {
	var raw any
	if err := yaml.NewDecoder(s.r).Decode(&raw); err != nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: "malformed YAML document", Cause: err, Offset: -1}}
	}
	norm := jsontext.Normalize(raw)
	doc, ok := norm.(map[string]any)
	if !ok {
		return nil, Issues{{Path: "/", Code: CodeInvalidType, Message: "document root must be a mapping", Offset: -1}}
	}
	return doc, nil
}

type fileSource struct {
	path string
	yaml bool
}

func (s *fileSource) Name() string { return s.path }

func (s *fileSource) Decode() (map[string]any, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: fmt.Sprintf("cannot open %s", s.path), Cause: err, Offset: -1}}
	}
	defer f.Close()
	if s.yaml {
		return (&yamlSource{r: f, name: s.path}).Decode()
	}
	return (&jsonSource{r: f, name: s.path}).Decode()
}

// wrapSyntaxError converts a decoder error into Issues, keeping the byte
// offset when the decoder reports one.
func wrapSyntaxError(err error) error {
	offset := int64(-1)
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		offset = syn.Offset
	}
	var typ *json.UnmarshalTypeError
	if errors.As(err, &typ) {
		offset = typ.Offset
	}
	return Issues{{Path: "/", Code: CodeParseError, Message: "malformed JSON document", Cause: err, Offset: offset}}
}
