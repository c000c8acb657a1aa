package model

// All lists every persisted model in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&DrugCategory{},
		&DrugForm{},
		&Vendor{},
		&Drug{},
		&StockTransaction{},
		&StockMovement{},
		&Notification{},
		&AuditLog{},
	}
}
