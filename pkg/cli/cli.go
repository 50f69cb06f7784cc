package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/cli/config"
	"github.com/m-mizutani/shopdesk/pkg/domain/interfaces"
	"github.com/m-mizutani/shopdesk/pkg/service/api"
	"github.com/m-mizutani/shopdesk/pkg/service/navigation"
	"github.com/m-mizutani/shopdesk/pkg/usecase"
	"github.com/m-mizutani/shopdesk/pkg/utils/errors"
	"github.com/urfave/cli/v3"
)

// Version is reported in the User-Agent header and by `shopdesk --version`
var Version = "dev"

type globalConfig struct {
	logger     config.Logger
	api        config.API
	credential config.Credential
	storage    config.Storage
	firestore  config.Firestore
	format     string
}

func (g *globalConfig) flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, g.logger.Flags()...)
	flags = append(flags, g.api.Flags()...)
	flags = append(flags, g.credential.Flags()...)
	flags = append(flags, g.storage.Flags()...)
	flags = append(flags, g.firestore.Flags()...)
	flags = append(flags, &cli.StringFlag{
		Name:        "format",
		Usage:       "Output format [text|json]",
		Sources:     cli.EnvVars("SHOPDESK_FORMAT"),
		Value:       formatText,
		Destination: &g.format,
	})
	return flags
}

func (g *globalConfig) applyFile() error {
	f, err := g.api.LoadFile()
	if err != nil {
		return err
	}
	if err := g.api.ApplyFile(f); err != nil {
		return err
	}
	g.credential.ApplyFile(f)
	g.storage.ApplyFile(f)
	g.firestore.ApplyFile(f)
	return nil
}

// runtime is what a command needs to talk to the API
type runtime struct {
	client  *api.Client
	store   interfaces.CredentialStore
	uc      *usecase.UseCases
	out     *printer
	closers []func()
}

func (r *runtime) Close() {
	r.uc.Close()
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// setup builds the credential store, API client and use cases. nav receives
// 401 redirects; commands pass a terminal navigator, the gateway a scoped one.
func (g *globalConfig) setup(ctx context.Context, nav interfaces.Navigator, sessionOpts ...usecase.SessionOption) (*runtime, error) {
	store, closeStore, err := g.credential.Configure(ctx, &g.storage, &g.firestore)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure credential store")
	}

	client, err := g.api.Configure(store, nav, Version)
	if err != nil {
		closeStore()
		return nil, err
	}

	out, err := newPrinter(os.Stdout, g.format)
	if err != nil {
		closeStore()
		return nil, err
	}

	return &runtime{
		client:  client,
		store:   store,
		uc:      usecase.New(client, store, usecase.WithSessionOptions(sessionOpts...)),
		out:     out,
		closers: []func(){closeStore},
	}, nil
}

func (g *globalConfig) terminalNavigator() interfaces.Navigator {
	return navigation.NewTerminal(os.Stderr, g.api.LoginPath, "")
}

// Run is the entry point of the shopdesk command
func Run(ctx context.Context, args []string) error {
	var g globalConfig
	closeLog := func() {}
	defer func() { closeLog() }()

	app := &cli.Command{
		Name:    "shopdesk",
		Usage:   "Command line client for the shop admin API",
		Version: Version,
		Flags:   g.flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := g.logger.Configure()
			if err != nil {
				return ctx, err
			}
			closeLog = closer

			ctx = ctxlog.With(ctx, logger)
			if err := g.applyFile(); err != nil {
				return ctx, err
			}
			g.api.SetDefaults()
			g.credential.SetDefaults()

			ctxlog.From(ctx).Debug("base options",
				"logger", g.logger,
				"api", g.api,
				"credential", g.credential,
				"storage", g.storage,
				"firestore", g.firestore,
			)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdLogin(&g),
			cmdLogout(&g),
			cmdWhoami(&g),
			cmdSession(&g),
			cmdRegister(&g),
			cmdPassword(&g),
			cmdProfile(&g),
			cmdProducts(&g),
			cmdOrders(&g),
			cmdDashboard(&g),
			cmdAnalytics(&g),
			cmdServe(&g),
			cmdTool(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		errors.Handle(ctx, goerr.Wrap(err, "failed to run app"))
		reportError(os.Stderr, err)
		return err
	}

	return nil
}
