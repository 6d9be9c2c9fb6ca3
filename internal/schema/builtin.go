package schema

// Builtin returns the table schemas registered at startup. Deployments that
// manage tables through an external catalog can skip these and register
// their own.
func Builtin() []Table {
	return []Table{
		{
			ID:   "students",
			Name: "Students",
			Fields: []Field{
				{Name: "Name", Kind: KindText, Order: 0},
				{Name: "Father Name", Kind: KindText, Order: 1},
				{Name: "Class", Kind: KindText, Order: 2},
				{Name: "Section", Kind: KindText, Order: 3},
				{Name: "Roll No", Kind: KindNumber, Order: 4},
				{Name: "DOB", Kind: KindDate, Order: 5},
				{Name: "Address", Kind: KindTextarea, Order: 6},
				{Name: "Contact", Kind: KindText, Order: 7},
				{Name: "Photo", Kind: KindImage, Order: 8},
			},
		},
		{
			ID:   "staff",
			Name: "Staff",
			Fields: []Field{
				{Name: "Name", Kind: KindText, Order: 0},
				{Name: "Designation", Kind: KindText, Order: 1},
				{Name: "Department", Kind: KindText, Order: 2},
				{Name: "Employee ID", Kind: KindText, Order: 3},
				{Name: "Date of Joining", Kind: KindDate, Order: 4},
				{Name: "Blood Group", Kind: KindText, Order: 5},
				{Name: "Contact", Kind: KindText, Order: 6},
				{Name: "Email", Kind: KindEmail, Order: 7},
				{Name: "Photo", Kind: KindImage, Order: 8},
				{Name: "Signature", Kind: KindImage, Order: 9},
			},
		},
	}
}
