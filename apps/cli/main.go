// Command cli drives the platform API from a terminal.
package main

import (
	"log"
	"os"

	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/session"
	"github.com/trezcool/capstone/core/user"
	"github.com/trezcool/capstone/gateway"
	"github.com/trezcool/capstone/pages"
	logsvc "github.com/trezcool/capstone/services/logger"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stderr, "CLI : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// restore the session
	sess, writer, err := session.Open(session.NewFileStore(conf.SessionFile))
	errAndDie(err)

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		deps: pages.Deps{
			API:        gateway.New(conf.APIBaseURL, conf.RequestTimeout, gateway.WithLogger(logsvc.NewRollbarLogger(logger, conf))),
			Session:    sess,
			Validate:   validate,
			Translator: translator,
		},
		writer: writer,
		out:    os.Stdout,
		title:  conf.ReportTitle,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", cli.errorMessage(err))
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
