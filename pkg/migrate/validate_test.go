package migrate_test

import (
	"testing"

	"github.com/printmade/printshop-backend/pkg/migrate"
)

func TestValidateDirAcceptsCheckedInMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
