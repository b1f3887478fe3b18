// Package persistence implements the two serialization forms the
// planner persists an InfraMap through (§6.1): a binary wire form for
// same-binary-family state round-tripping, and a canonical JSON form for
// human inspection and diffing that never writes a live credential to
// disk.
package persistence

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"

	"inframap/internal/canonicalize"
	"inframap/internal/core"
)

// hiddenSentinel replaces every resolved credential value before JSON
// serialization. It is a literal string, never an error (§6.1).
const hiddenSentinel = "[HIDDEN]"

// sensitiveSettingsKeys are table Settings entries that carry Kafka SASL
// credentials rather than engine tuning knobs (§6.1).
var sensitiveSettingsKeys = map[string]bool{
	"kafka_sasl_username": true,
	"kafka_sasl_password": true,
}

// SaveBinary writes m to w using the stdlib gob codec: a same-binary-
// family, tolerant-of-missing-fields wire form (§6.1). See DESIGN.md for
// why this, rather than a wire-codec library, is the stdlib exception.
func SaveBinary(m *core.InfraMap, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(m); err != nil {
		return fmt.Errorf("persistence: encode binary infra map: %w", err)
	}
	return nil
}

// LoadBinary decodes an InfraMap previously written by SaveBinary.
func LoadBinary(r io.Reader) (*core.InfraMap, error) {
	var m core.InfraMap
	if err := gob.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("persistence: decode binary infra map: %w", err)
	}
	canonicalize.Normalize(&m)
	return &m, nil
}

// SaveJSON writes the canonical, credential-masked JSON form of m, with
// every nested object's keys sorted lexicographically (§6.1, Design Note
// §9: "serializing to an intermediate tree and sorting"). A struct
// marshals through encoding/json in Go declaration order, not key order,
// so maskCredentials' output is round-tripped through a generic
// map[string]interface{} tree first — encoding/json always sorts a Go
// map's keys on encode, so re-marshaling that generic tree is what
// actually gives every struct-typed object (not just the free-form
// Settings/TypedPaths maps) its canonical sorted-keys shape; MooseVersion
// is omitted entirely when unset (§6.1).
func SaveJSON(m *core.InfraMap, w io.Writer) error {
	masked := maskCredentials(m)
	sorted, err := toSortedJSON(masked)
	if err != nil {
		return fmt.Errorf("persistence: marshal json infra map: %w", err)
	}
	_, err = w.Write(append(sorted, '\n'))
	return err
}

// toSortedJSON marshals v, then decodes the result into a generic
// map[string]interface{}/[]interface{} tree and re-marshals that tree
// indented: the round trip erases Go struct field order, leaving only
// lexicographic map-key order behind at every nesting level. Numbers are
// decoded with UseNumber so the re-marshaled form never loses precision
// to a float64 round trip.
func toSortedJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	return json.MarshalIndent(generic, "", "  ")
}

// LoadJSON decodes the JSON form into an InfraMap. Decoding is tolerant
// of fields absent from an older producer (encoding/json ignores
// JSON object keys that have no matching struct field, and zero-values
// any struct field absent from the input); an empty defaultDatabase
// falls back to the empty-string default, which resolveDatabase treats
// identically to "local" (§3). The map is canonicalized on load so a
// hand-edited or older-producer file still satisfies equivalence
// comparisons (§6.1).
func LoadJSON(r io.Reader) (*core.InfraMap, error) {
	var m core.InfraMap
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("persistence: decode json infra map: %w", err)
	}
	canonicalize.Normalize(&m)
	return &m, nil
}

// maskCredentials returns a shallow clone of m with every resolved
// credential value replaced by hiddenSentinel. The live map passed in is
// never mutated: only the tables and engine-parameter structs that
// actually carry a credential are cloned, everything else is shared.
func maskCredentials(m *core.InfraMap) *core.InfraMap {
	clone := *m
	if len(m.Tables) == 0 {
		return &clone
	}

	clone.Tables = make(map[string]*core.Table, len(m.Tables))
	for id, t := range m.Tables {
		clone.Tables[id] = maskTableCredentials(t)
	}
	return &clone
}

func maskTableCredentials(t *core.Table) *core.Table {
	needsClone := hasAWSCreds(t.Engine) || hasSensitiveSettings(t.Settings)
	if !needsClone {
		return t
	}

	clone := *t
	clone.Engine = maskEngineCredentials(t.Engine)
	if hasSensitiveSettings(t.Settings) {
		settings := make(map[string]string, len(t.Settings))
		for k, v := range t.Settings {
			if sensitiveSettingsKeys[k] {
				v = hiddenSentinel
			}
			settings[k] = v
		}
		clone.Settings = settings
	}
	return &clone
}

func hasAWSCreds(e core.Engine) bool {
	switch {
	case e.S3Queue != nil && (e.S3Queue.AWSAccessKeyID != "" || e.S3Queue.AWSSecretKey != ""):
		return true
	case e.S3 != nil && (e.S3.AWSAccessKeyID != "" || e.S3.AWSSecretKey != ""):
		return true
	case e.IcebergS3 != nil && (e.IcebergS3.AWSAccessKeyID != "" || e.IcebergS3.AWSSecretKey != ""):
		return true
	default:
		return false
	}
}

func hasSensitiveSettings(settings map[string]string) bool {
	for k := range settings {
		if sensitiveSettingsKeys[k] {
			return true
		}
	}
	return false
}

func maskEngineCredentials(e core.Engine) core.Engine {
	clone := e
	if e.S3Queue != nil {
		p := *e.S3Queue
		if p.AWSAccessKeyID != "" {
			p.AWSAccessKeyID = hiddenSentinel
		}
		if p.AWSSecretKey != "" {
			p.AWSSecretKey = hiddenSentinel
		}
		clone.S3Queue = &p
	}
	if e.S3 != nil {
		p := *e.S3
		if p.AWSAccessKeyID != "" {
			p.AWSAccessKeyID = hiddenSentinel
		}
		if p.AWSSecretKey != "" {
			p.AWSSecretKey = hiddenSentinel
		}
		clone.S3 = &p
	}
	if e.IcebergS3 != nil {
		p := *e.IcebergS3
		if p.AWSAccessKeyID != "" {
			p.AWSAccessKeyID = hiddenSentinel
		}
		if p.AWSSecretKey != "" {
			p.AWSSecretKey = hiddenSentinel
		}
		clone.IcebergS3 = &p
	}
	return clone
}

// MarshalJSONBytes is a convenience wrapper used by the CLI's `plan
// --format json` path, mirroring the teacher's string-returning
// formatters instead of requiring callers to manage an io.Writer + bytes.Buffer
// pair themselves.
func MarshalJSONBytes(m *core.InfraMap) (string, error) {
	var buf bytes.Buffer
	if err := SaveJSON(m, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
