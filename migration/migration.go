package migration

import (
	"context"
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Migrator func(ctx context.Context) error

// Migrators are picked by the `migrate --version` flag. "latest" always
// brings the schema to the current entity definitions.
var Migrators = map[string]Migrator{
	"0000":   AutoMigrate,
	"latest": AutoMigrate,
}

func Migrate(ctx context.Context, version string) error {
	migrator, ok := Migrators[version]
	if !ok {
		versions := maps.Keys(Migrators)
		slices.Sort(versions)
		return fmt.Errorf("not found version %s, available versions: %v", version, versions)
	}

	return migrator(ctx)
}
