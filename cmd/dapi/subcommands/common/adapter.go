package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	"github.com/designsafe-ci/dapi/pkg/config/profiles"
	"github.com/designsafe-ci/dapi/pkg/dapi"
	derr "github.com/designsafe-ci/dapi/pkg/errors"
	dlog "github.com/designsafe-ci/dapi/pkg/log"
	"github.com/youta-t/flarc"
	"go.uber.org/zap/zapcore"
)

type TaskWithCommonFlag[T any] func(
	ctx context.Context,
	logger *log.Logger,
	commonFlag CommonFlags,
	cl flarc.Commandline[T],
	params []any,
) error

func NewTaskWithCommonFlag[T any](task TaskWithCommonFlag[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		var commonFlag CommonFlags
		found := false
		newpos := make([]any, 0, len(pos))
		for _, p := range pos {
			switch v := p.(type) {
			case CommonFlags:
				found = true
				commonFlag = v
			default:
				newpos = append(newpos, p)
			}
		}
		if !found {
			return errors.New("programming error: common flags not found")
		}

		if commonFlag.Verbose {
			dlog.SetLevel(zapcore.DebugLevel)
		} else {
			dlog.SetLevel(zapcore.WarnLevel)
		}

		logger := log.New(cl.Stderr(), "", log.LstdFlags)
		logger.SetPrefix(fmt.Sprintf("[%s] ", cl.Fullname()))

		return Explain(task(ctx, logger, commonFlag, cl, newpos), commonFlag.Verbose)
	}
}

// Explain appends causes of err when verbose.
func Explain(err error, verbose bool) error {
	var cerr derr.CUIError
	if err == nil || !verbose || !errors.As(err, &cerr) {
		return err
	}
	return fmt.Errorf("%w\n\n%s", err, cerr.Verbose())
}

type Task[T any] func(
	ctx context.Context,
	logger *log.Logger,
	dapiEnv dapienv.DapiEnv,
	client *dapi.Client,
	cl flarc.Commandline[T],
	params []any,
) error

func NewTask[T any](task Task[T]) flarc.Task[T] {
	return NewTaskWithCommonFlag(func(
		ctx context.Context,
		logger *log.Logger,
		commonFlag CommonFlags,
		cl flarc.Commandline[T],
		params []any,
	) error {
		store, err := profiles.LoadProfileStore(commonFlag.ProfileStore)
		if err != nil {
			if errors.Is(err, profiles.ErrProfileStoreNotFound) {
				return fmt.Errorf(
					"%w: dapi profile store (%s) is not found. Please try `dapi init` first",
					err, commonFlag.ProfileStore,
				)
			}
			return fmt.Errorf(
				"%w: failed to load dapi profile store (%s)",
				err, commonFlag.ProfileStore,
			)
		}
		prof, err := store.Get(commonFlag.Profile)
		if err != nil {
			return fmt.Errorf(
				"%w: in the profile store (%s). Please try `dapi init --profile %s`",
				err, commonFlag.ProfileStore, commonFlag.Profile,
			)
		}
		if err := prof.Verify(); err != nil {
			return fmt.Errorf("%w: profile '%s'", err, commonFlag.Profile)
		}
		if prof.Expired(time.Now()) {
			return fmt.Errorf(
				"%w: access token of profile '%s' has expired at %s. Please try `dapi init` again",
				derr.ErrAuthentication, commonFlag.Profile, prof.Token.ExpiresAt.Format(time.RFC3339),
			)
		}

		e, err := dapienv.LoadDapiEnv(commonFlag.Env)
		if err != nil {
			return fmt.Errorf("%w: failed to load dapienv", err)
		}

		client, err := dapi.FromToken(
			prof.BaseURL, prof.Token.AccessToken,
			dapi.WithProgress(cl.Stderr()),
		)
		if err != nil {
			return fmt.Errorf(
				"%w: failed to create dapi client. Your profile (%s in %s) can be broken.\n\nTry `dapi init` again",
				err, commonFlag.Profile, commonFlag.ProfileStore,
			)
		}
		defer client.Close()

		return task(ctx, logger, *e, client, cl, params)
	})
}
