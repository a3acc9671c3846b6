package queues_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	apisystems "github.com/designsafe-ci/dapi/api-types/systems"
	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/internal/commandline"
	"github.com/designsafe-ci/dapi/cmd/dapi/subcommands/internal/testenv"
	systems_queues "github.com/designsafe-ci/dapi/cmd/dapi/subcommands/systems/queues"
	"github.com/designsafe-ci/dapi/internal/testutils/tapisfake"
	"github.com/designsafe-ci/dapi/pkg/config/dapienv"
	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/designsafe-ci/dapi/pkg/utils/try"
	"github.com/google/go-cmp/cmp"
)

func TestQueuesCommand(t *testing.T) {
	stampede3 := apisystems.System{
		Id:      "stampede3",
		CanExec: true,
		BatchLogicalQueues: []apisystems.LogicalQueue{
			{Name: "skx", HpcQueueName: "skx", MinNodeCount: 1, MaxNodeCount: 256, MinCoresPerNode: 1, MaxCoresPerNode: 48, MinMinutes: 1, MaxMinutes: 2880},
			{Name: "skx-dev", HpcQueueName: "skx-dev", MinNodeCount: 1, MaxNodeCount: 16, MinCoresPerNode: 1, MaxCoresPerNode: 48, MinMinutes: 1, MaxMinutes: 120},
		},
	}

	run := func(t *testing.T, flags systems_queues.Flags, systemId string) (string, error) {
		t.Helper()
		fake := tapisfake.New(t)
		fake.PutSystem(stampede3)
		fake.PutSystem(apisystems.System{Id: "designsafe.storage.default"})
		client := testenv.Client(t, fake)

		stdout := new(strings.Builder)
		err := systems_queues.Task(
			context.Background(),
			testenv.Logger(t),
			*dapienv.New(),
			client,
			commandline.MockCommandline[systems_queues.Flags]{
				Fullname_: "dapi systems queues",
				Stdout_:   stdout,
				Flags_:    flags,
				Args_:     map[string][]string{systems_queues.ARG_SYSTEM_ID: {systemId}},
			},
			[]any{},
		)
		return stdout.String(), err
	}

	t.Run("table", func(t *testing.T) {
		stdout := try.To(run(t, systems_queues.Flags{}, "stampede3")).OrFatal(t)
		for _, s := range []string{"HPC QUEUE", "skx-dev", "1-256", "1-2880"} {
			if !strings.Contains(stdout, s) {
				t.Errorf("%s is missing in:\n%s", s, stdout)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		stdout := try.To(run(t, systems_queues.Flags{JSON: true}, "stampede3")).OrFatal(t)
		actual := []apisystems.LogicalQueue{}
		try.To(0, json.Unmarshal([]byte(stdout), &actual)).OrFatal(t)
		if !cmp.Equal(actual, stampede3.BatchLogicalQueues) {
			t.Errorf("unexpected queues: %s", cmp.Diff(stampede3.BatchLogicalQueues, actual))
		}
	})

	for name, systemId := range map[string]string{
		"system without queues": "designsafe.storage.default",
		"unknown system":        "nowhere",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, systems_queues.Flags{}, systemId)
			if !errors.Is(err, derr.ErrSystemInfo) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
