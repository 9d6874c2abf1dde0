package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MimeEntry is one mimetype → payload pair.
type MimeEntry struct {
	MimeType string
	Value    MultilineString
}

// MimeBundle is an ordered mimetype → payload mapping.
// Order follows the source document so "first image mimetype wins" is stable.
type MimeBundle []MimeEntry

// Get returns the payload for a mimetype.
func (b MimeBundle) Get(mimeType string) (string, bool) {
	for _, e := range b {
		if e.MimeType == mimeType {
			return string(e.Value), true
		}
	}
	return "", false
}

// Has reports whether the bundle carries the mimetype.
func (b MimeBundle) Has(mimeType string) bool {
	_, ok := b.Get(mimeType)
	return ok
}

// FirstWithPrefix returns the first entry whose mimetype starts with prefix.
func (b MimeBundle) FirstWithPrefix(prefix string) (MimeEntry, bool) {
	for _, e := range b {
		if strings.HasPrefix(e.MimeType, prefix) {
			return e, true
		}
	}
	return MimeEntry{}, false
}

// UnmarshalJSON decodes a JSON object keeping key order.
func (b *MimeBundle) UnmarshalJSON(data []byte) error {
	out := MimeBundle{}
	err := decodeOrdered(data, "mime bundle", func(key string, raw json.RawMessage) error {
		var v MultilineString
		if err := v.UnmarshalJSON(raw); err != nil {
			return err
		}
		out = append(out, MimeEntry{MimeType: key, Value: v})
		return nil
	})
	if err != nil {
		return err
	}
	*b = out
	return nil
}

// decodeOrdered walks the members of a JSON object in document order.
func decodeOrdered(data []byte, what string, member func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%s: expected object, got %v", what, tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("%s: expected key, got %v", what, keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := member(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON encodes the bundle as a JSON object in entry order.
func (b MimeBundle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.MimeType)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(string(e.Value))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Attachment is one named drag-and-drop image of a markdown cell.
type Attachment struct {
	Name   string
	Bundle MimeBundle
}

// Attachments maps attachment names to mime bundles in document order.
type Attachments []Attachment

// Get returns the bundle stored under name.
func (a Attachments) Get(name string) (MimeBundle, bool) {
	for _, at := range a {
		if at.Name == name {
			return at.Bundle, true
		}
	}
	return nil, false
}

// UnmarshalJSON decodes the attachments object keeping key order.
func (a *Attachments) UnmarshalJSON(data []byte) error {
	out := Attachments{}
	err := decodeOrdered(data, "attachments", func(key string, raw json.RawMessage) error {
		var b MimeBundle
		if err := b.UnmarshalJSON(raw); err != nil {
			return err
		}
		out = append(out, Attachment{Name: key, Bundle: b})
		return nil
	})
	if err != nil {
		return err
	}
	*a = out
	return nil
}

// MarshalJSON encodes the attachments as a JSON object in entry order.
func (a Attachments) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, at := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(at.Name)
		if err != nil {
			return nil, err
		}
		v, err := at.Bundle.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
