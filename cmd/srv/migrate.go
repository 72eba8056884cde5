package main

import (
	"github.com/campus-events/backend/migration"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	s.loadLogger()
	s.loadDatabase()

	return migration.Migrate(s.ctx, cctx.String("version"))
}

func (s *srv) migrateDB() {
	if err := migration.AutoMigrate(s.ctx); err != nil {
		panic(err)
	}
}
