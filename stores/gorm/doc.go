// Package gorm provides a GORM-backed implementation of
// whispr.CredentialStore.
//
// Open the database with error translation enabled so unique-constraint
// violations are detectable, then migrate and construct the store:
//
//	db, err := gorm.Open(sqlite.Open("whispr.db"), &gorm.Config{TranslateError: true})
//	if err != nil { ... }
//	if err := gormstore.AutoMigrate(db); err != nil { ... }
//	store := gormstore.NewCredentialStore(db)
//
// The unique indexes on username and google_id are what make duplicate
// registration and concurrent federated find-or-create safe; the store
// never serializes those paths in application code.
package gorm
