package mapping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the mapping file at path and returns the taxonomy of team.
// Files ending in .yaml or .yml are read as YAML, anything else as JSON.
// Both formats keep file order and reject duplicate keys.
func Load(ctx context.Context, path, team string) (*Mapping, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{File: path, Kind: ErrInvalidMapping, Err: err}
	}

	var m *Mapping
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		m, err = ParseYAML(data, team)
	default:
		m, err = ParseJSON(data, team)
	}
	if err != nil {
		var mErr *Error
		if errors.As(err, &mErr) {
			mErr.File = path
		}
		return nil, err
	}
	return m, nil
}

// ParseJSON decodes a {team: {category: [subcategory, ...]}} document.
func ParseJSON(data []byte, team string) (*Mapping, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var (
		found bool
		raw   []rawCategory
		teams []string
	)
	seen := make(map[string]bool)
	err := readObject(dec, "", func(key string) error {
		if seen[key] {
			return invalid(key, "duplicate team %q", key)
		}
		seen[key] = true
		teams = append(teams, key)
		if key != team {
			var skip json.RawMessage
			return dec.Decode(&skip)
		}
		found = true
		var err error
		raw, err = readTeam(dec, key)
		return err
	})
	if err != nil {
		return nil, asMappingError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, invalid("", "unexpected data after the top level object")
	}
	if !found {
		return nil, unknownTeam(team, teams)
	}
	return build(team, raw)
}

func readTeam(dec *json.Decoder, team string) ([]rawCategory, error) {
	var raw []rawCategory
	seen := make(map[string]bool)
	err := readObject(dec, team, func(key string) error {
		path := team + "." + key
		if seen[key] {
			return invalid(path, "duplicate category %q", key)
		}
		seen[key] = true
		subs, err := readStrings(dec, path)
		if err != nil {
			return err
		}
		raw = append(raw, rawCategory{name: key, subs: subs})
		return nil
	})
	return raw, err
}

// readObject consumes one JSON object, calling fn for every key. fn must
// consume the value.
func readObject(dec *json.Decoder, path string, fn func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return invalid(path, "%v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return invalid(path, "expected an object, got %s", describe(tok))
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return invalid(path, "%v", err)
		}
		key, ok := tok.(string)
		if !ok {
			return invalid(path, "expected a key, got %s", describe(tok))
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return invalid(path, "%v", err)
	}
	return nil
}

func readStrings(dec *json.Decoder, path string) ([]string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, invalid(path, "%v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, invalid(path, "expected a list of subcategories, got %s", describe(tok))
	}
	var out []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, invalid(path, "%v", err)
		}
		s, ok := tok.(string)
		if !ok {
			return nil, invalid(path, "expected a subcategory name, got %s", describe(tok))
		}
		out = append(out, s)
	}
	if _, err := dec.Token(); err != nil {
		return nil, invalid(path, "%v", err)
	}
	return out, nil
}

func describe(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return "an object"
		case '[':
			return "a list"
		}
		return fmt.Sprintf("%q", v.String())
	case string:
		return fmt.Sprintf("string %q", v)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ParseYAML decodes the YAML form of the mapping document.
func ParseYAML(data []byte, team string) (*Mapping, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, invalid("", "%v", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, invalid("", "empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, invalid("", "expected a mapping at line %d", root.Line)
	}

	var (
		teamNode *yaml.Node
		teams    []string
	)
	seen := make(map[string]bool)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		if seen[key] {
			return nil, invalid(key, "duplicate team %q at line %d", key, root.Content[i].Line)
		}
		seen[key] = true
		teams = append(teams, key)
		if key == team {
			teamNode = root.Content[i+1]
		}
	}
	if teamNode == nil {
		return nil, unknownTeam(team, teams)
	}
	if teamNode.Kind != yaml.MappingNode {
		return nil, invalid(team, "expected a mapping of categories at line %d", teamNode.Line)
	}

	var raw []rawCategory
	cats := make(map[string]bool)
	for i := 0; i+1 < len(teamNode.Content); i += 2 {
		key, val := teamNode.Content[i], teamNode.Content[i+1]
		path := team + "." + key.Value
		if cats[key.Value] {
			return nil, invalid(path, "duplicate category %q at line %d", key.Value, key.Line)
		}
		cats[key.Value] = true
		if val.Kind != yaml.SequenceNode {
			return nil, invalid(path, "expected a list of subcategories at line %d", val.Line)
		}
		rc := rawCategory{name: key.Value}
		for _, item := range val.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, invalid(path, "expected a subcategory name at line %d", item.Line)
			}
			rc.subs = append(rc.subs, item.Value)
		}
		raw = append(raw, rc)
	}
	return build(team, raw)
}

func unknownTeam(team string, teams []string) *Error {
	sorted := append([]string(nil), teams...)
	sort.Strings(sorted)
	return &Error{
		Path: team,
		Kind: ErrUnknownTeam,
		Err:  fmt.Errorf("team %q not found (available: %s)", team, strings.Join(sorted, ", ")),
	}
}

func asMappingError(err error) error {
	var mErr *Error
	if errors.As(err, &mErr) {
		return err
	}
	return invalid("", "%v", err)
}
