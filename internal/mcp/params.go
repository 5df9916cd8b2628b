package mcp

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnknownField represents an unknown field that was passed but not recognized
type UnknownField struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

func (u UnknownField) String() string {
	return fmt.Sprintf("unknown parameter %q ignored", u.Name)
}

// StartSearchParams are the arguments of start_search
type StartSearchParams struct {
	Path            string   `json:"path,omitempty"`
	Query           string   `json:"query"`
	IsRegex         bool     `json:"is_regex,omitempty"`
	IsCaseSensitive bool     `json:"is_case_sensitive,omitempty"`
	IsWholeWord     bool     `json:"is_whole_word,omitempty"`
	TimeoutSecs     int      `json:"timeout_secs,omitempty"`
	Exclude         []string `json:"exclude,omitempty"`
	Include         []string `json:"include,omitempty"`
	Relative        bool     `json:"relative,omitempty"`

	Warnings []UnknownField `json:"-"`
}

// UnmarshalJSON accepts unknown fields and the alias names the desktop client
// used ("pattern", "folder", "case_sensitive", "whole_word", "regex").
func (p *StartSearchParams) UnmarshalJSON(data []byte) error {
	type Alias StartSearchParams

	knownFields := map[string]struct{}{
		"path": {}, "query": {}, "is_regex": {}, "is_case_sensitive": {},
		"is_whole_word": {}, "timeout_secs": {}, "exclude": {}, "include": {}, "relative": {},

		"pattern": {}, "folder": {}, "regex": {}, "case_sensitive": {}, "whole_word": {},
	}

	raw, warnings, err := collectUnknownFields(data, knownFields)
	if err != nil {
		return err
	}

	normalized := make(map[string]json.RawMessage, len(raw))
	for key, value := range raw {
		switch key {
		case "pattern":
			setIfAbsent(normalized, raw, "query", value)
		case "folder":
			setIfAbsent(normalized, raw, "path", value)
		case "regex":
			setIfAbsent(normalized, raw, "is_regex", value)
		case "case_sensitive":
			setIfAbsent(normalized, raw, "is_case_sensitive", value)
		case "whole_word":
			setIfAbsent(normalized, raw, "is_whole_word", value)
		default:
			normalized[key] = value
		}
	}

	normalizedJSON, err := json.Marshal(normalized)
	if err != nil {
		return err
	}

	var alias Alias
	if err := json.Unmarshal(normalizedJSON, &alias); err != nil {
		return err
	}
	*p = StartSearchParams(alias)
	p.Warnings = warnings
	return nil
}

// setIfAbsent maps an alias onto its canonical key unless the caller also
// sent the canonical key, which wins
func setIfAbsent(dst, raw map[string]json.RawMessage, canonical string, value json.RawMessage) {
	if _, ok := raw[canonical]; ok {
		return
	}
	dst[canonical] = value
}

// CancelSearchParams are the arguments of cancel_search
type CancelSearchParams struct {
	SessionID string         `json:"session_id,omitempty"`
	Warnings  []UnknownField `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling that accepts unknown fields
func (p *CancelSearchParams) UnmarshalJSON(data []byte) error {
	type Alias CancelSearchParams

	_, warnings, err := collectUnknownFields(data, map[string]struct{}{"session_id": {}})
	if err != nil {
		return err
	}

	var alias Alias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*p = CancelSearchParams(alias)
	p.Warnings = warnings
	return nil
}

type InfoParams struct {
	Tool     string         `json:"tool,omitempty"`
	Warnings []UnknownField `json:"-"` // Captures unknown fields
}

// UnmarshalJSON implements custom unmarshaling that accepts unknown fields
func (i *InfoParams) UnmarshalJSON(data []byte) error {
	type Alias InfoParams

	_, warnings, err := collectUnknownFields(data, map[string]struct{}{"tool": {}})
	if err != nil {
		return err
	}

	var alias Alias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*i = InfoParams(alias)
	i.Warnings = warnings
	return nil
}

// decodeArguments unmarshals tool arguments, treating an absent body as {}
func decodeArguments(args json.RawMessage, v interface{}) error {
	if len(strings.TrimSpace(string(args))) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}
	return json.Unmarshal(args, v)
}

func warningStrings(fields []UnknownField) []string {
	if len(fields) == 0 {
		return nil
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.String()
	}
	return out
}
