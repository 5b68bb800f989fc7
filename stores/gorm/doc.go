// Package gorm provides a GORM-backed PrincipalStore.
//
// Usage:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := authdgorm.AutoMigrate(db); err != nil {
//	    log.Fatal(err)
//	}
//	store := authdgorm.NewPrincipalStore(db)
//
// The store enforces the uniqueness invariants the session manager
// relies on: usernames and emails are unique, and at most one principal
// exists per (provider, external id) pair.
package gorm
