package plugin

import (
	"encoding/json"
	"fmt"
)

// propertiesWire is the JSON shape a plugin's getItemProperties emits:
//
//	{"title": "...", "sections": [{"title": "...",
//	  "fields": [{"key": "...", "value": "..."}]}]}
type propertiesWire struct {
	Title    string `json:"title"`
	Sections []struct {
		Title  string `json:"title"`
		Fields []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"fields"`
	} `json:"sections"`
}

// ParseItemProperties decodes a plugin's UTF-8 properties JSON payload.
func ParseItemProperties(jsonUTF8 []byte) (*ItemProperties, error) {
	var wire propertiesWire
	if err := json.Unmarshal(jsonUTF8, &wire); err != nil {
		return nil, fmt.Errorf("plugin: parse item properties: %w", err)
	}

	props := &ItemProperties{Title: wire.Title}
	for _, s := range wire.Sections {
		section := PropertySection{Title: s.Title}
		for _, f := range s.Fields {
			section.Fields = append(section.Fields, PropertyField{Key: f.Key, Value: f.Value})
		}
		props.Sections = append(props.Sections, section)
	}
	return props, nil
}
