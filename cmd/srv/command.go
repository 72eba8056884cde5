package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "campus-events"
	s.app.Usage = "Campus event ticketing and check-in service"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path of the TOML config file",
			EnvVars: []string{"CONFIG_FILE"},
		},
		&cli.StringFlag{
			Name:    "token-secret",
			Usage:   "secret signing access tokens",
			EnvVars: []string{"TOKEN_SECRET"},
		},
		&cli.StringFlag{
			Name:    "qr-secret",
			Usage:   "secret signing ticket QR payloads",
			EnvVars: []string{"QR_SECRET"},
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Usage:   "database connection string",
			EnvVars: []string{"DATABASE_DSN"},
		},
		&cli.StringFlag{
			Name:    "redis-addr",
			Usage:   "redis address, caching is disabled when empty",
			EnvVars: []string{"REDIS_ADDR"},
		},
	}
	s.app.Before = s.loadConfig
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Serves every HTTP api of the service.`,
		},
		{
			Action: s.startMigrate,
			Name:   "migrate",
			Usage:  "Migrate the database schema",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Value: "latest",
					Usage: "migration version to run",
				},
			},
			Category:    "Database",
			Description: `Creates or alters tables to match the current entities.`,
		},
	}
}
