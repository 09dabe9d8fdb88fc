package model

import (
	"encoding/json"
	"testing"
	"time"
)

// JSON配列のjsonb値が正しくImageListに変換されることを検証
func TestImageList_Scan_JSONArray(t *testing.T) {
	var l ImageList
	if err := l.Scan([]byte(`["https://example.com/a.png", "https://example.com/b.png"]`)); err != nil {
		t.Fatalf("Scan returned unexpected error: %v", err)
	}
	if len(l) != 2 {
		t.Fatalf("len = %d, want 2", len(l))
	}
	if l[0] != "https://example.com/a.png" {
		t.Errorf("l[0] = %q, want first URL", l[0])
	}
}

// 配列以外のjsonb値は画像0件として扱われ、エラーにならないことを検証
func TestImageList_Scan_NonArrayValue(t *testing.T) {
	tests := []struct {
		name string
		src  any
	}{
		{"string value", []byte(`"not-an-array"`)},
		{"object value", []byte(`{"url": "x"}`)},
		{"number value", []byte(`42`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l ImageList
			if err := l.Scan(tt.src); err != nil {
				t.Fatalf("Scan should tolerate non-array values, got error: %v", err)
			}
			if len(l) != 0 {
				t.Errorf("len = %d, want 0 for non-array value", len(l))
			}
		})
	}
}

// NULLはnilとして扱われることを検証
func TestImageList_Scan_Null(t *testing.T) {
	l := ImageList{"existing"}
	if err := l.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) returned unexpected error: %v", err)
	}
	if l != nil {
		t.Errorf("expected nil ImageList for NULL, got %v", l)
	}
}

// 未対応の型はエラーになることを検証
func TestImageList_Scan_UnsupportedType(t *testing.T) {
	var l ImageList
	if err := l.Scan(42); err == nil {
		t.Error("expected error for unsupported source type")
	}
}

// nilのImageListはNULL、非nilはJSON配列として永続化されることを検証
func TestImageList_Value(t *testing.T) {
	var nilList ImageList
	v, err := nilList.Value()
	if err != nil {
		t.Fatalf("Value returned unexpected error: %v", err)
	}
	if v != nil {
		t.Errorf("expected NULL for nil ImageList, got %v", v)
	}

	v, err = ImageList{"a", "b"}.Value()
	if err != nil {
		t.Fatalf("Value returned unexpected error: %v", err)
	}
	if string(v.([]byte)) != `["a","b"]` {
		t.Errorf("Value = %s, want JSON array", v)
	}
}

// LastUpdatedがnilの場合、JSONでnullになることを検証
func TestOverview_MarshalJSON_NullLastUpdated(t *testing.T) {
	data, err := json.Marshal(&Overview{})
	if err != nil {
		t.Fatalf("Marshal returned unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal returned unexpected error: %v", err)
	}
	if v, ok := decoded["lastUpdated"]; !ok || v != nil {
		t.Errorf("lastUpdated = %v, want null", v)
	}
}

// statusがactiveの場合のみIsActiveがtrueを返すことを検証
func TestProduct_IsActive(t *testing.T) {
	active := "active"
	inactive := "inactive"

	tests := []struct {
		name   string
		status *string
		want   bool
	}{
		{"active", &active, true},
		{"inactive", &inactive, false},
		{"nil status", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Status: tt.status, CreatedAt: time.Now()}
			if got := p.IsActive(); got != tt.want {
				t.Errorf("IsActive() = %v, want %v", got, tt.want)
			}
		})
	}
}
