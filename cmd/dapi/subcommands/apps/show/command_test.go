package show_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	apiapps "github.com/designsafe-ci/dapi/api-types/apps"
	apps_show "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/apps/show"
	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/internal/commandline"
	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/internal/testenv"
	"github.com/designsafe-ci/dapi/internal/testutils/tapisfake"
	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/designsafe-ci/dapi/pkg/utils/try"
)

func TestShowCommand(t *testing.T) {
	type When struct {
		appId   string
		version string
	}
	type Then struct {
		err error
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			fake := tapisfake.New(t)
			fake.PutApp(apiapps.App{Id: "opensees-express", Version: "3.7.0", Enabled: true})
			client := testenv.Client(t, fake)

			stdout := new(strings.Builder)
			err := apps_show.Task(
				context.Background(),
				testenv.Logger(t),
				*dapienv.New(),
				client,
				commandline.MockCommandline[apps_show.Flags]{
					Fullname_: "dapi apps show",
					Stdout_:   stdout,
					Flags_:    apps_show.Flags{Version: when.version},
					Args_:     map[string][]string{apps_show.ARG_APP_ID: {when.appId}},
				},
				[]any{},
			)
			if then.err != nil {
				if !errors.Is(err, then.err) {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			app := apiapps.App{}
			try.To(0, json.Unmarshal([]byte(stdout.String()), &app)).OrFatal(t)
			if app.Id != when.appId || app.Version != "3.7.0" {
				t.Errorf("unexpected app: %+v", app)
			}
		}
	}

	t.Run("latest", theory(When{appId: "opensees-express"}, Then{}))
	t.Run("with version", theory(When{appId: "opensees-express", version: "3.7.0"}, Then{}))
	t.Run("wrong version", theory(When{appId: "opensees-express", version: "9.9"}, Then{err: derr.ErrAppNotFound}))
	t.Run("unknown app", theory(When{appId: "nope"}, Then{err: derr.ErrAppNotFound}))
}
