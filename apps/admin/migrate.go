package main

import (
	"github.com/pressly/goose/v3"

	appfs "github.com/markazhub/markaz/fs"
	"github.com/markazhub/markaz/storage/database"
)

var gooseRunFunc = goose.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.db, "migrations", arguments...)
}

func (cli *commandLine) createDB() error {
	return database.CreateIfNotExist(cli.conf)
}
