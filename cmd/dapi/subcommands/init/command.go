package init

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/common"
	"github.com/designsafe-ci/dapi/pkg/auth"
	"github.com/designsafe-ci/dapi/pkg/config/profiles"
	"github.com/designsafe-ci/dapi/pkg/dapi"
	"github.com/designsafe-ci/dapi/pkg/tapis"
	"github.com/youta-t/flarc"
)

type Flags struct {
	BaseURL  string `flag:"base-url" metavar:"URL" help:"TAPIS tenant. Default: $TAPIS_BASE_URL or https://designsafe.tapis.io"`
	Username string `flag:"username" alias:"u" help:"DesignSafe username. Default: $DESIGNSAFE_USERNAME or prompt"`
	EnvFile  string `flag:"env-file" metavar:"path/to/.env" help:"dotenv file with DESIGNSAFE_USERNAME and DESIGNSAFE_PASSWORD. Default: ./.env if exists"`
}

// Login obtains a profile for the tenant at baseURL.
type Login func(ctx context.Context, baseURL string, options ...auth.Option) (*profiles.Profile, error)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Log in to DesignSafe and save the access token as a profile.",
		Flags{},
		flarc.Args{},
		common.NewTaskWithCommonFlag(Task(Authenticate, ".")),
		flarc.WithDescription(`
Log in to DesignSafe and register the access token into your profile store.

Credentials are taken from --username, environment variables
(DESIGNSAFE_USERNAME, DESIGNSAFE_PASSWORD), the dotenv file, or prompts, in this order.

The name of the profile is given by "--profile" (default: "default").
It is also written to ".dapiprofile" in the current directory,
so that commands in this directory use the profile.
`),
	)
}

// Task logs in, saves the profile and writes the profile pointer into pointerDir.
func Task(login Login, pointerDir string, options ...auth.Option) common.TaskWithCommonFlag[Flags] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		cf common.CommonFlags,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		flags := cl.Flags()

		baseURL := flags.BaseURL
		if baseURL == "" {
			baseURL = os.Getenv(dapi.EnvBaseURL)
		}
		if baseURL == "" {
			baseURL = tapis.DefaultBaseURL
		}

		authOpts := []auth.Option{
			auth.WithPrompter(&auth.TerminalPrompter{In: cl.Stdin(), Out: cl.Stderr()}),
		}
		if flags.Username != "" {
			authOpts = append(authOpts, auth.WithUsername(flags.Username))
		}
		if flags.EnvFile != "" {
			authOpts = append(authOpts, auth.WithEnvFile(flags.EnvFile))
		}

		prof, err := login(ctx, baseURL, append(authOpts, options...)...)
		if err != nil {
			return err
		}

		store, err := profiles.LoadProfileStore(cf.ProfileStore)
		if errors.Is(err, profiles.ErrProfileStoreNotFound) {
			// ok.
			store = profiles.ProfileStore{}
		} else if err != nil {
			return fmt.Errorf("failed to load profile store (%s): %w", cf.ProfileStore, err)
		}

		profName := cf.Profile
		if profName == "" {
			profName = profiles.DefaultProfileName
		}
		store[profName] = prof

		if err := os.MkdirAll(filepath.Dir(cf.ProfileStore), os.FileMode(0700)); err != nil {
			return fmt.Errorf("failed to create directory for profile store: %w", err)
		}
		if err := store.Save(cf.ProfileStore); err != nil {
			return fmt.Errorf("failed to save profile store (%s): %w", cf.ProfileStore, err)
		}
		logger.Printf("profile %s (user: %s) is saved to %s", profName, prof.Username, cf.ProfileStore)

		pointer := filepath.Join(pointerDir, common.ProfilePointer)
		if err := os.WriteFile(pointer, []byte(profName+"\n"), os.FileMode(0600)); err != nil {
			return fmt.Errorf("failed to write %s: %w", pointer, err)
		}
		return nil
	}
}

// Authenticate resolves credentials and exchanges them for an access token.
func Authenticate(ctx context.Context, baseURL string, options ...auth.Option) (*profiles.Profile, error) {
	cred, err := auth.Resolve(options...)
	if err != nil {
		return nil, err
	}
	token, err := tapis.CreateToken(ctx, baseURL, cred.Username, cred.Password)
	if err != nil {
		return nil, err
	}

	prof := &profiles.Profile{
		BaseURL:  baseURL,
		Username: cred.Username,
		Token:    profiles.Token{AccessToken: token.AccessToken},
	}
	if claims, err := auth.ParseToken(token.AccessToken); err == nil {
		prof.Token.ExpiresAt = claims.Expiry()
	} else if 0 < token.ExpiresIn {
		prof.Token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}
	return prof, nil
}
