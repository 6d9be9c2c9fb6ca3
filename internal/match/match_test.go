package match

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Student Name", "studentname"},
		{"roll_no", "rollno"},
		{"Roll No.", "rollno"},
		{"DOB", "dob"},
		{"  F Photo ", "fphoto"},
		{"", ""},
		{"--", ""},
	}
	for _, tt := range tests {
		if got := Key(tt.in); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"studntname", "studentname", 1},
		{"kitten", "sitting", 3},
		{"dob", "dateofbirth", 9},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMatchExact(t *testing.T) {
	m := NewMatcher([]string{"Student Name", "Roll No"})

	got, ok := m.Match("roll_no")
	if !ok || got != "Roll No" {
		t.Fatalf("Match(\"roll_no\") = %q, %v; want \"Roll No\", true", got, ok)
	}
	got, ok = m.Match("STUDENT NAME")
	if !ok || got != "Student Name" {
		t.Fatalf("Match(\"STUDENT NAME\") = %q, %v; want \"Student Name\", true", got, ok)
	}
}

func TestMatchFuzzy(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		header string
		want   string
		wantOK bool
	}{
		{"one typo long name", []string{"Student Name"}, "Studnt Name", "Student Name", true},
		{"two typos long name", []string{"Student Name"}, "Studnt Nme", "Student Name", true},
		{"three typos rejected", []string{"Student Name"}, "Studt Nm", "", false},
		{"short name one typo", []string{"Name"}, "Nmae", "", false}, // distance 2 > 1 for short
		{"short name single edit", []string{"Name"}, "Nam", "Name", true},
		{"dob vs date of birth rejected", []string{"Date of Birth"}, "DOB", "", false},
		{"no candidates", nil, "Anything", "", false},
		{"empty header", []string{"Name"}, "--", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(tt.fields)
			got, ok := m.Match(tt.header)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Match(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// A matched field leaves the pool: two near-identical headers cannot both
// claim the single "Student Name" field.
func TestMatchConsumesField(t *testing.T) {
	m := NewMatcher([]string{"Student Name"})

	if _, ok := m.Match("Studnt Name"); !ok {
		t.Fatal("first header should match")
	}
	if got, ok := m.Match("Student Nam"); ok {
		t.Fatalf("second header matched %q; pool should be exhausted", got)
	}
	if len(m.Remaining()) != 0 {
		t.Errorf("Remaining() = %v, want empty", m.Remaining())
	}
}

// Ties on edit distance resolve to the earlier candidate.
func TestMatchTieBreaksByOrder(t *testing.T) {
	m := NewMatcher([]string{"Field A", "Field B"})

	got, ok := m.Match("Field C")
	if !ok || got != "Field A" {
		t.Errorf("Match(\"Field C\") = %q, %v; want \"Field A\", true", got, ok)
	}
}
