package plugin

import "testing"

func TestParseItemProperties(t *testing.T) {
	payload := []byte(`{
		"title": "report.txt",
		"sections": [
			{"title": "General", "fields": [
				{"key": "Size", "value": "12 KB"},
				{"key": "Modified", "value": "2026-07-30"}
			]},
			{"title": "Security", "fields": []}
		]
	}`)

	props, err := ParseItemProperties(payload)
	if err != nil {
		t.Fatalf("ParseItemProperties: %v", err)
	}
	if props.Title != "report.txt" {
		t.Fatalf("title = %q", props.Title)
	}
	if len(props.Sections) != 2 || props.Sections[0].Title != "General" {
		t.Fatalf("sections = %+v", props.Sections)
	}
	if props.Sections[0].Fields[1].Value != "2026-07-30" {
		t.Fatalf("field = %+v", props.Sections[0].Fields[1])
	}
}

func TestParseItemPropertiesRejectsMalformedJSON(t *testing.T) {
	if _, err := ParseItemProperties([]byte(`{"title": `)); err == nil {
		t.Fatal("expected a parse error")
	}
}
