package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	out    io.Writer
	openDB func() (*sql.DB, error) // opened on demand, only migrations need it
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...] - run a goose command (up, down, status, ...) on the database")
	fmt.Fprintln(cli.out, "  qrcode -token TOKEN -out FILE.png [-size PX] - render a check-in code for kiosk testing")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	qrcodeCmd := flag.NewFlagSet("qrcode", flag.ContinueOnError)
	qrcodeCmd.SetOutput(cli.out)
	qrcodeToken := qrcodeCmd.String("token", "", "The check-in token to encode.")
	qrcodeOut := qrcodeCmd.String("out", "", "The PNG file to write.")
	qrcodeSize := qrcodeCmd.Int("size", 256, "The image width and height in pixels.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "qrcode":
		if err := qrcodeCmd.Parse(args[2:]); err != nil {
			if err == flag.ErrHelp {
				return errHelp
			}
			return err
		}
		if *qrcodeToken == "" || *qrcodeOut == "" {
			qrcodeCmd.Usage()
			return errHelp
		}
		return cli.qrcode(*qrcodeToken, *qrcodeOut, *qrcodeSize)
	default:
		cli.printUsage()
		return errHelp
	}
}
