package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/tasks/cmd/app/commands"
	"github.com/allisson/tasks/internal/app"
	"github.com/allisson/tasks/internal/config"
)

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "revoke-user-tokens",
			Usage: "Revoke every active refresh token of a user",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User ID (UUID)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunRevokeUserTokens(
					ctx,
					tokenUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("user-id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "encrypt-jwt-secret",
			Usage: "Encrypt a JWT signing secret with a KMS keeper for use in JWT_SECRET_KEY",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "secret",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Plaintext signing secret",
				},
				&cli.StringFlag{
					Name:     "kms-key-uri",
					Aliases:  []string{"k"},
					Required: true,
					Sources:  cli.EnvVars("KMS_KEY_URI"),
					Usage:    "gocloud.dev secrets keeper URI (gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())

				return commands.RunEncryptJWTSecret(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("secret"),
					cmd.String("kms-key-uri"),
					cmd.String("format"),
				)
			},
		},
	}
}
