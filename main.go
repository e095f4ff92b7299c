package main

import (
	"fmt"
	"os"

	_ "github.com/konsorten/go-windows-terminal-sequences"
	"github.com/mattn/go-colorable"
)

var options Options

func run(c *Client, migrations []Migration) error {
	if err := c.loginLoop(); err != nil {
		return err
	}
	defer func() {
		if err := c.logout(); err != nil {
			log.Debug(err)
		}
	}()
	migrator := NewMigrator(c, c.opts)
	err := migrator.Run(migrations)
	migrator.report(colorable.NewColorableStdout())
	return err
}

func main() {
	options = getOptions()
	log = newLogger(&options)
	migrations, err := readMigrations(options.File)
	if err != nil {
		log.Fatal(err)
	}
	if len(migrations) == 0 {
		log.Warn(fmt.Sprintf("No migrations found in %s", options.File))
		return
	}
	if options.DryRun {
		log.Info("Dry run: nothing will be committed")
	}
	c := NewClient(&options)
	if err := run(c, migrations); err != nil {
		log.Error(err)
		os.Exit(1)
	}
	log.Info("Migration complete. Please verify results through the APIC GUI.")
}
