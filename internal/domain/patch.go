package domain

// Field names as stored and serialized
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldCategory    = "category"
	FieldStock       = "stock"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
)

// ItemPatch is a partial update. Nil fields are left unchanged.
type ItemPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *Category
	Stock       *int
}

// FieldUpdate is a single present field of a patch
type FieldUpdate struct {
	Name  string
	Value any
}

// Fields returns the present fields in a stable order
func (p ItemPatch) Fields() []FieldUpdate {
	fields := make([]FieldUpdate, 0, 5)
	if p.Name != nil {
		fields = append(fields, FieldUpdate{Name: FieldName, Value: *p.Name})
	}
	if p.Description != nil {
		fields = append(fields, FieldUpdate{Name: FieldDescription, Value: *p.Description})
	}
	if p.Price != nil {
		fields = append(fields, FieldUpdate{Name: FieldPrice, Value: *p.Price})
	}
	if p.Category != nil {
		fields = append(fields, FieldUpdate{Name: FieldCategory, Value: *p.Category})
	}
	if p.Stock != nil {
		fields = append(fields, FieldUpdate{Name: FieldStock, Value: *p.Stock})
	}
	return fields
}

// IsEmpty reports whether the patch carries no field updates
func (p ItemPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}
