package dockermode

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"a0up/internal/config"
	"a0up/internal/testutils"
	"a0up/pkg/apt"
	"a0up/pkg/runtime"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	home := t.TempDir()
	return &config.Config{
		Mode:          config.ModeDocker,
		InstallDir:    filepath.Join(home, "agent-zero"),
		DataDir:       filepath.Join(home, "agent0_data"),
		Port:          50001,
		Host:          "0.0.0.0",
		ContainerName: "agent-zero",
		HomeDir:       home,
	}
}

func testProcedure(t *testing.T, recorder *testutils.Recorder, fake *testutils.FakeRuntime) (*Procedure, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	p := New(testConfig(t), recorder, apt.NewManagerWithEUID(recorder, 1000))
	p.out = out
	p.connect = func() (runtime.Runtime, error) { return fake, nil }
	return p, out
}

// noCompose keeps the opportunistic compose step out of a test's way.
func noCompose() map[string]string {
	return map[string]string{
		"apt-cache show docker-compose-plugin": "",
		"apt-cache show docker-compose":        "",
	}
}

func TestRun_FreshInstall(t *testing.T) {
	recorder := &testutils.Recorder{Outputs: noCompose()}
	fake := &testutils.FakeRuntime{}
	p, out := testProcedure(t, recorder, fake)

	err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ping",
		"version",
		"pull " + config.Image,
		"list",
		"create agent-zero",
		"start fake-1",
	}, fake.Calls)

	// Engine was already on PATH, so no apt activity beyond the compose probe.
	assert.False(t, recorder.Ran("sudo apt-get"))

	require.Len(t, fake.Created, 1)
	created := fake.Created[0]
	assert.Equal(t, config.Image, created.Image)
	assert.Equal(t, "unless-stopped", created.RestartPolicy)
	require.Len(t, created.Ports, 1)
	assert.Equal(t, 50001, created.Ports[0].HostPort)
	assert.Equal(t, config.ContainerPort, created.Ports[0].ContainerPort)
	require.Len(t, created.Binds, 1)
	assert.Equal(t, p.cfg.DataDir+":"+config.ContainerDataPath, created.Binds[0])

	assert.Contains(t, out.String(), "http://localhost:50001")
	assert.Contains(t, out.String(), "docker logs -f agent-zero")

	// The data directory exists after the run.
	assert.DirExists(t, p.cfg.DataDir)
}

func TestRun_ReplacesStaleContainer(t *testing.T) {
	recorder := &testutils.Recorder{Outputs: noCompose()}
	fake := &testutils.FakeRuntime{
		Containers: []*runtime.Container{
			{ID: "old123", Name: "/agent-zero", State: "exited"},
		},
	}
	p, _ := testProcedure(t, recorder, fake)

	err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ping",
		"version",
		"pull " + config.Image,
		"list",
		"stop old123",
		"remove old123",
		"create agent-zero",
		"start fake-1",
	}, fake.Calls)
}

func TestRun_StaleStopAndRemoveFailuresIgnored(t *testing.T) {
	recorder := &testutils.Recorder{Outputs: noCompose()}
	fake := &testutils.FakeRuntime{
		Containers: []*runtime.Container{
			{ID: "old123", Name: "agent-zero", State: "running"},
		},
		StopErr:   errors.New("container already stopped"),
		RemoveErr: errors.New("no such container"),
	}
	p, _ := testProcedure(t, recorder, fake)

	err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, fake.Calls, "create agent-zero")
}

func TestRun_OtherContainersLeftAlone(t *testing.T) {
	recorder := &testutils.Recorder{Outputs: noCompose()}
	fake := &testutils.FakeRuntime{
		Containers: []*runtime.Container{
			{ID: "db1", Name: "postgres"},
			{ID: "web1", Name: "agent-zero-staging"},
		},
	}
	p, _ := testProcedure(t, recorder, fake)

	err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotContains(t, fake.Calls, "stop db1")
	assert.NotContains(t, fake.Calls, "stop web1")
}

func TestRun_PullFailureIsFatal(t *testing.T) {
	recorder := &testutils.Recorder{Outputs: noCompose()}
	fake := &testutils.FakeRuntime{
		PullErr: errors.New("manifest unknown"),
	}
	p, _ := testProcedure(t, recorder, fake)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to pull image")
	assert.Contains(t, err.Error(), "manifest unknown")

	// Nothing past the pull ran.
	assert.NotContains(t, fake.Calls, "list")
	assert.Empty(t, fake.Created)
}

func TestRun_PingFailureIsAdvisory(t *testing.T) {
	recorder := &testutils.Recorder{Outputs: noCompose()}
	fake := &testutils.FakeRuntime{
		PingErr: errors.New("permission denied on /var/run/docker.sock"),
	}
	p, _ := testProcedure(t, recorder, fake)

	err := p.Run(context.Background())
	require.NoError(t, err)

	// Version advisory is skipped when the daemon is unreachable, but the
	// run still proceeds through pull and create.
	assert.NotContains(t, fake.Calls, "version")
	assert.Contains(t, fake.Calls, "pull "+config.Image)
	assert.Contains(t, fake.Calls, "create agent-zero")
}

func TestRun_InstallsEngineWhenMissing(t *testing.T) {
	recorder := &testutils.Recorder{
		Binaries: map[string]bool{"docker": false},
		Outputs:  noCompose(),
	}
	fake := &testutils.FakeRuntime{}
	p, _ := testProcedure(t, recorder, fake)

	err := p.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, recorder.Ran("sudo apt-get update"))
	assert.True(t, recorder.Ran("sudo apt-get install -y docker.io"))
	assert.True(t, recorder.Ran("sudo systemctl enable --now docker"))
}

func TestRun_EngineInstallFailureIsFatal(t *testing.T) {
	recorder := &testutils.Recorder{
		Binaries: map[string]bool{"docker": false},
		Errors: map[string]error{
			"sudo apt-get install -y docker.io": errors.New("E: dpkg was interrupted"),
		},
	}
	fake := &testutils.FakeRuntime{}
	p, _ := testProcedure(t, recorder, fake)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to install docker engine")
	assert.Empty(t, fake.Calls)
}

func TestRun_StartFailureIsFatal(t *testing.T) {
	recorder := &testutils.Recorder{Outputs: noCompose()}
	fake := &testutils.FakeRuntime{
		StartErr: errors.New("port is already allocated"),
	}
	p, out := testProcedure(t, recorder, fake)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start container agent-zero")
	assert.Empty(t, out.String())
}

func TestRun_ConnectFailureIsFatal(t *testing.T) {
	recorder := &testutils.Recorder{Outputs: noCompose()}
	p, _ := testProcedure(t, recorder, nil)
	p.connect = func() (runtime.Runtime, error) {
		return nil, errors.New("no docker socket")
	}

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to docker engine")
}

func TestProcedure_Name(t *testing.T) {
	p := New(testConfig(t), &testutils.Recorder{}, nil)
	assert.Equal(t, "docker", p.Name())
}
