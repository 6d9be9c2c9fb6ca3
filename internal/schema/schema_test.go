package schema

import "testing"

func TestFieldIsImage(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		want  bool
	}{
		{"declared image kind", Field{Name: "Portrait", Kind: KindImage}, true},
		{"photo name pattern", Field{Name: "F Photo", Kind: KindText}, true},
		{"signature pattern", Field{Name: "Sign", Kind: KindText}, true},
		{"barcode pattern", Field{Name: "Barcode No", Kind: KindText}, true},
		{"qr pattern", Field{Name: "QR Code", Kind: KindText}, true},
		{"plain text", Field{Name: "Student Name", Kind: KindText}, false},
		{"date field", Field{Name: "Date of Birth", Kind: KindDate}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.IsImage(); got != tt.want {
				t.Errorf("IsImage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTableSplit(t *testing.T) {
	tbl := Table{
		ID:   "students",
		Name: "Students",
		Fields: []Field{
			{Name: "Name", Kind: KindText},
			{Name: "Roll No", Kind: KindText},
			{Name: "Photo", Kind: KindImage},
			{Name: "Sign", Kind: KindText}, // image by name pattern
		},
	}

	text := tbl.TextFields()
	if len(text) != 2 || text[0].Name != "Name" || text[1].Name != "Roll No" {
		t.Errorf("TextFields() = %v", text)
	}
	images := tbl.ImageFields()
	if len(images) != 2 || images[0].Name != "Photo" || images[1].Name != "Sign" {
		t.Errorf("ImageFields() = %v", images)
	}
}

func TestTableValidate(t *testing.T) {
	valid := Table{ID: "t1", Fields: []Field{{Name: "A", Kind: KindText}}}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid table rejected: %v", err)
	}

	dup := Table{ID: "t2", Fields: []Field{{Name: "A"}, {Name: "A"}}}
	if err := dup.Validate(); err == nil {
		t.Error("duplicate field names accepted")
	}

	var many []Field
	for i := 0; i < MaxFields+1; i++ {
		many = append(many, Field{Name: string(rune('A' + i))})
	}
	over := Table{ID: "t3", Fields: many}
	if err := over.Validate(); err == nil {
		t.Error("over-limit field count accepted")
	}

	if err := (Table{ID: "t4"}).Validate(); err == nil {
		t.Error("empty field list accepted")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	tbl := Table{ID: "students", Fields: []Field{{Name: "Name", Kind: KindText}}}

	if err := r.Register(tbl); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(tbl); err == nil {
		t.Error("duplicate registration accepted")
	}

	got, ok := r.Get("students")
	if !ok || got.ID != "students" {
		t.Errorf("Get returned %v, %v", got, ok)
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get found an unregistered table")
	}
	if all := r.All(); len(all) != 1 {
		t.Errorf("All() returned %d tables, want 1", len(all))
	}
}
