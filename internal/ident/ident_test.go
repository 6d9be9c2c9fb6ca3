package ident

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "P1", "P1"},
		{"lowercase", "p1", "P1"},
		{"surrounding whitespace", "  p1  ", "P1"},
		{"extension stripped", "P1.JPG", "P1"},
		{"lowercase extension stripped", "p1.jpeg", "P1"},
		{"float artifact", "1.0", "1"},
		{"leading zeros collapse", "001", "1"},
		{"plain integer", "7", "7"},
		{"non-integral float untouched", "1.5", "1.5"},
		{"internal whitespace collapsed", "ravi   kumar", "RAVI KUMAR"},
		{"tabs collapsed", "a\t\tb", "A B"},
		{"png extension", "photo_12.png", "PHOTO_12"},
		{"unknown extension kept", "file.txt", "FILE.TXT"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestNormalizeIdempotent verifies normalize(normalize(x)) == normalize(x)
// for a spread of representative inputs.
func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"P1.JPG", " p1 ", "1.0", "001", "ravi  kumar", "photo.webp",
		"", "7", "A.B.C.jpg", "  1.50  ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

// Equal cell and filename identifiers must produce the same key: the cell
// "1" (often delivered as the float 1.0) has to match the archive entry
// "1.jpg".
func TestNormalizeCellMatchesFilename(t *testing.T) {
	if Normalize("1.0") != Normalize("1.jpg") {
		t.Errorf("cell %q and filename %q should normalize identically: %q vs %q",
			"1.0", "1.jpg", Normalize("1.0"), Normalize("1.jpg"))
	}
	if Normalize(" p1 ") != Normalize("P1.JPG") {
		t.Errorf("cell %q and filename %q should normalize identically", " p1 ", "P1.JPG")
	}
}

func TestIsImageExtension(t *testing.T) {
	for _, ext := range []string{".jpg", "jpg", ".JPEG", "PNG", ".webp"} {
		if !IsImageExtension(ext) {
			t.Errorf("IsImageExtension(%q) = false, want true", ext)
		}
	}
	for _, ext := range []string{"", ".txt", "pdf", ".jpg2"} {
		if IsImageExtension(ext) {
			t.Errorf("IsImageExtension(%q) = true, want false", ext)
		}
	}
}
