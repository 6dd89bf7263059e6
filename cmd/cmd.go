// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configFlag is shared by every command that reads the TOML config.
func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// serveCommand runs the HTTP service.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Start the upload web service",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Serve,
	}
}

// setupCommand initializes the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and run database migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// usersCommand handles account administration from the terminal.
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "users",
		Aliases: []string{"user"},
		Usage:   "Manage accounts",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create an account",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Username for the new account",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Password for the new account",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "admin",
						Usage: "Grant admin privileges",
					},
					&cli.StringFlag{
						Name:  "library-path",
						Usage: "Dedicated library root for this account",
					},
				},
				Action: r.UserAdd,
			},
			{
				Name:  "list",
				Usage: "List accounts",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.UserList,
			},
			{
				Name:  "set-password",
				Usage: "Reset an account's password",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account to update",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "New password",
						Required: true,
					},
				},
				Action: r.UserSetPassword,
			},
		},
	}
}

// logsCommand prints upload job history.
func logsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "logs",
		Usage: "Show upload job history",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "user",
				Usage: "Only show jobs for this username",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of jobs to show",
				Value: 50,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, csv, or json",
				Value:   "text",
			},
		},
		Action: r.Logs,
	}
}

// tuiCommand launches the interactive history browser.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Browse upload history interactively",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of jobs to load",
				Value: 200,
			},
		},
		Action: r.Tui,
	}
}
