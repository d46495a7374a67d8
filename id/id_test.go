package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/coalesce/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"CallID", id.NewCallID, "call_"},
		{"ItemID", id.NewItemID, "item_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixCall)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixCall {
		t.Errorf("expected prefix %q, got %q", id.PrefixCall, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"CallID", id.NewCallID, id.ParseCallID},
		{"ItemID", id.NewItemID, id.ParseItemID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
			if !parsed.Equal(original) {
				t.Error("expected parsed ID to equal original")
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	if _, err := id.ParseCallID(id.NewItemID().String()); err == nil {
		t.Error("ParseCallID accepted an item_ ID")
	}
	if _, err := id.ParseItemID(id.NewCallID().String()); err == nil {
		t.Error("ParseItemID accepted a call_ ID")
	}
}

func TestParseInvalid(t *testing.T) {
	for _, input := range []string{"", "not-a-typeid", "call_"} {
		if _, err := id.Parse(input); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", input)
		}
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero value should be nil")
	}
	if i.String() != "" {
		t.Errorf("nil ID String() = %q, want empty", i.String())
	}
	if i.Prefix() != "" {
		t.Errorf("nil ID Prefix() = %q, want empty", i.Prefix())
	}
}

func TestTextMarshalRoundTrip(t *testing.T) {
	original := id.NewItemID()

	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded id.ID
	if err := decoded.UnmarshalText(data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !decoded.Equal(original) {
		t.Errorf("round-trip mismatch: %q != %q", decoded.String(), original.String())
	}

	var nilDecoded id.ID
	if err := nilDecoded.UnmarshalText(nil); err != nil {
		t.Fatalf("unmarshal of empty text failed: %v", err)
	}
	if !nilDecoded.IsNil() {
		t.Error("expected nil ID from empty text")
	}
}
