package text

import "testing"

func TestClean(t *testing.T) {
	cases := map[string]string{
		"":                              "",
		"  Website redesign ":           "Website redesign",
		"<b>Bold</b> name":              "Bold name",
		"Tom & Jerry":                   "Tom & Jerry",
		"<script>alert(1)</script>Proj": "Proj",
	}
	for in, want := range cases {
		if got := Clean(in); got != want {
			t.Fatalf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanAllDropsEmpty(t *testing.T) {
	got := CleanAll([]string{"To do", " ", "<i></i>", "Done"})
	if len(got) != 2 || got[0] != "To do" || got[1] != "Done" {
		t.Fatalf("unexpected result %v", got)
	}
}

func TestEmail(t *testing.T) {
	if got := Email("  E1@X.com "); got != "e1@x.com" {
		t.Fatalf("unexpected email %q", got)
	}
}
