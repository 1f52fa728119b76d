package wikiboot

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBundleMarshalsFlat(t *testing.T) {
	bundle := Bundle{Version: "1.0", Lang: "fr", Messages: map[string]string{"hello": "bonjour"}}
	raw, err := json.Marshal(bundle)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var flat map[string]string
	if err := json.Unmarshal(raw, &flat); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]string{"version": "1.0", "lang": "fr", "hello": "bonjour"}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Fatalf("unexpected flat form (-want +got):\n%s", diff)
	}
}

func TestBundleUnmarshalKeepsOnlyStrings(t *testing.T) {
	var bundle Bundle
	if err := json.Unmarshal([]byte(`{"version":"2.0","lang":"en","a":"x","n":1,"o":{"k":"v"}}`), &bundle); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := Bundle{Version: "2.0", Lang: "en", Messages: map[string]string{"a": "x"}}
	if diff := cmp.Diff(want, bundle); diff != "" {
		t.Fatalf("unexpected bundle (-want +got):\n%s", diff)
	}
	if err := json.Unmarshal([]byte(`"text"`), &bundle); err == nil {
		t.Fatalf("expected error for non-object payload")
	}
}

func TestBundleCloneDetachesMessages(t *testing.T) {
	original := Bundle{Lang: "en", Messages: map[string]string{"a": "1"}}
	clone := original.Clone()
	clone.Merge(map[string]string{"a": "2", "b": "3"})

	if original.Messages["a"] != "1" || len(original.Messages) != 1 {
		t.Fatalf("expected original untouched, got %v", original.Messages)
	}
	if clone.Messages["a"] != "2" || clone.Messages["b"] != "3" {
		t.Fatalf("expected merge to overwrite, got %v", clone.Messages)
	}

	var empty Bundle
	empty.Merge(nil)
	if empty.Messages != nil {
		t.Fatalf("expected merge of nothing to keep nil messages")
	}
}
