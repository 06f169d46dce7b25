// Command devapi serves the platform API from memory, seeded with a small data set.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	echoapi "github.com/trezcool/capstone/apps/devapi/echo"
	"github.com/trezcool/capstone/core"
	"github.com/trezcool/capstone/core/message"
	"github.com/trezcool/capstone/core/project"
	"github.com/trezcool/capstone/core/team"
	"github.com/trezcool/capstone/core/user"
	logsvc "github.com/trezcool/capstone/services/logger"
	notifysvc "github.com/trezcool/capstone/services/notify"
	inmemdb "github.com/trezcool/capstone/storage/inmem"
)

const seedPassword = "Passw0rd!"

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, conf)

	// set up DB
	db, err := inmemdb.Open()
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	fx, err := inmemdb.Seed(db, seedPassword)
	if err != nil {
		logger.Fatal(fmt.Sprintf("seeding database: %v", err), err)
	}
	logger.Info(fmt.Sprintf("seeded %d accounts, password %q (admin: %s)", len(fx.Students)+5, seedPassword, fx.Admin.Email))

	usrRepo := inmemdb.NewUserRepository(db)

	// set up services
	notifier := notifysvc.New(logger, log.New(os.Stdout, "MAIL : ", log.LstdFlags), conf)
	tokens := user.NewTokenGenerator(conf.Server.SecretKey, conf.Server.JWTExpirationDelta)
	usrSvc := user.NewService(usrRepo, tokens, notifier, conf.AppName)
	teamSvc := team.NewService(inmemdb.NewTeamRepository(db))
	projectSvc := project.NewService(inmemdb.NewProjectRepository(db), usrRepo)
	messageSvc := message.NewService(inmemdb.NewMessageRepository(db), usrRepo, teamSvc.Members, notifier)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			TeamSvc:    teamSvc,
			ProjectSvc: projectSvc,
			MessageSvc: messageSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
