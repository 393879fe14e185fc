package entity

// Supplier proveedor (maestro externo; aquí solo se consulta su existencia).
type Supplier struct {
	ID       string
	Code     string
	Name     string
	IsActive bool
}
