package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const TokenTypeColor = "color"

// TokenValue is one entry of a design-token document.
type TokenValue struct {
	Type  string `json:"$type"`
	Value string `json:"$value"`
}

type Token struct {
	Name string
	TokenValue
}

// TokenSet is a design-token document. It encodes as a JSON object whose keys
// keep slice order, so exports are stable across runs.
type TokenSet []Token

func (s TokenSet) Get(name string) (TokenValue, bool) {
	for _, t := range s {
		if t.Name == name {
			return t.TokenValue, true
		}
	}
	return TokenValue{}, false
}

func (s TokenSet) Names() []string {
	names := make([]string, len(s))
	for i, t := range s {
		names[i] = t.Name
	}
	return names
}

func (s TokenSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(t.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(t.TokenValue)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *TokenSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("token set: expected object, got %v", tok)
	}

	var tokens TokenSet
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("token set: expected key, got %v", tok)
		}
		var value TokenValue
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("token set: %s: %w", name, err)
		}
		tokens = append(tokens, Token{Name: name, TokenValue: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = tokens
	return nil
}
