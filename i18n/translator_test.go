package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("unknown_shape_type", nil); msg == "unknown_shape_type" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("unknown_shape_type", nil); msg == "unknown shape type" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_EmbedsData(t *testing.T) {
	msg := T("unresolved_material_reference", map[string]string{"material": "Au"})
	if msg == "" || msg == "unresolved_material_reference" {
		t.Fatalf("expected rendered message, got %q", msg)
	}
	if want := "unresolved material reference: Au"; msg != want {
		t.Fatalf("got %q, want %q", msg, want)
	}
}

func TestTranslator_UnknownCodeFallsBack(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("expected code passthrough, got %q", msg)
	}
}
