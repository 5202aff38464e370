package sanitize

import "testing"

func TestTextStripsTagsAndEncodedTags(t *testing.T) {
	got := Text("  <b>Roof</b>   leak &lt;script&gt;alert(1)&lt;/script&gt; ")
	if got != "Roof leak alert(1)" {
		t.Fatalf("unexpected sanitized text %q", got)
	}
}

func TestTextPtrBlankBecomesNil(t *testing.T) {
	blank := "<br/>"
	if TextPtr(&blank) != nil {
		t.Fatalf("expected nil for markup-only input")
	}
	if TextPtr(nil) != nil {
		t.Fatalf("expected nil for nil input")
	}
}

func TestStringsDropsEmpty(t *testing.T) {
	got := Strings([]string{"Windows", " ", "<i></i>", "Siding"})
	if len(got) != 2 || got[0] != "Windows" || got[1] != "Siding" {
		t.Fatalf("unexpected result %v", got)
	}
}
