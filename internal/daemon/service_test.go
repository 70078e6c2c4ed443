package daemon

import (
	"errors"
	"testing"
	"time"

	"github.com/1broseidon/autodock/internal/config"
	"github.com/1broseidon/autodock/internal/dock"
	"github.com/1broseidon/autodock/internal/dockaccess"
	"github.com/1broseidon/autodock/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceHarness struct {
	backend *fakeBackend
	events  *platform.Dispatcher
	sched   *manualScheduler
	svc     *Service
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Dock.Backend = "xfce"
	return cfg
}

func newServiceHarness(t *testing.T, cfg *config.Config) *serviceHarness {
	t.Helper()
	h := &serviceHarness{
		backend: newFakeBackend(),
		events:  &platform.Dispatcher{},
		sched:   &manualScheduler{},
	}
	build := Factory(Environment{
		Backend:   h.backend,
		Events:    h.events,
		Scheduler: h.sched,
		Logger:    discardLogger(),
		DryRun:    true,
	})
	svc, err := NewService(ServiceOptions{
		Config:     cfg,
		ConfigPath: "/tmp/autodock.yaml",
		Build:      build,
		Logger:     discardLogger(),
		DryRun:     true,
	})
	require.NoError(t, err)
	h.svc = svc
	t.Cleanup(svc.Close)
	return h
}

func TestControllerConfig_FromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DebounceMs = 250
	cfg.MaximizeTolerance = 8
	cfg.ResyncIntervalSeconds = 30
	cfg.RestoreOnStop = false
	cfg.Dock.GeometryRefresh = "every_pass"

	got := ControllerConfig(cfg)
	assert.Equal(t, Config{
		Debounce:        250 * time.Millisecond,
		Tolerance:       8,
		GeometryRefresh: RefreshEveryPass,
		ResyncInterval:  30 * time.Second,
		RestoreOnStop:   false,
	}, got)
}

func TestNewGeometryProvider_FormulaOnlyWithoutIntrospection(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Dock.Introspect = false
	cfg.Dock.TileSize = 64

	backend := newFakeBackend()
	layout := dockaccess.NewPreferences(dockaccess.NewMemory(false), cfg.Dock.Orientation, cfg.Dock.TileSize)
	p := NewGeometryProvider(cfg, backend, layout, discardLogger())

	g := p.Compute()
	assert.Equal(t, dock.SourceFormula, g.Source)
	assert.Equal(t, platform.Rect{X: 0, Y: 836, Width: 1440, Height: 64}, g.Rect)
	assert.Zero(t, backend.dockCalls)
}

func TestNewShim_DryRunWritesToMemory(t *testing.T) {
	writer, reader, err := NewShim(testConfig(), Environment{DryRun: true})
	require.NoError(t, err)
	_, isMemory := writer.(*dockaccess.Memory)
	assert.True(t, isMemory)
	_, isCommand := reader.(*dockaccess.CommandShim)
	assert.True(t, isCommand)

	_, _, err = NewShim(&config.Config{Dock: config.DockConfig{Backend: "cairo"}}, Environment{})
	assert.Error(t, err)
}

func TestService_StartReconcileStatus(t *testing.T) {
	h := newServiceHarness(t, testConfig())
	h.backend.show("video", testScreen)

	require.NoError(t, h.svc.Start())
	st := h.svc.Status()
	assert.True(t, st.Running)
	assert.Equal(t, "hidden", st.State)
	assert.True(t, st.DryRun)
	assert.Equal(t, "xfce", st.Backend)
	assert.Equal(t, "/tmp/autodock.yaml", st.ConfigPath)
	require.NotNil(t, st.LastDecision)
	assert.Equal(t, dock.ReasonMaximized, st.LastDecision.Reason)

	h.backend.clear()
	d, err := h.svc.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, "shown", d.Desired)
	assert.True(t, d.Changed)
}

func TestService_ReconcileWhileStopped(t *testing.T) {
	h := newServiceHarness(t, testConfig())
	_, err := h.svc.Reconcile()
	assert.True(t, errors.Is(err, ErrNotRunning))
}

func TestService_TogglePausesAndResumes(t *testing.T) {
	h := newServiceHarness(t, testConfig())
	h.backend.show("video", testScreen)
	require.NoError(t, h.svc.Start())
	assert.Equal(t, "hidden", h.svc.Status().State)

	running, err := h.svc.Toggle()
	require.NoError(t, err)
	assert.False(t, running)
	st := h.svc.Status()
	assert.False(t, st.Running)
	assert.Equal(t, "shown", st.State, "restore_on_stop shows the dock")

	running, err = h.svc.Toggle()
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, "hidden", h.svc.Status().State)
}

func TestService_ApplyTunablesKeepsController(t *testing.T) {
	h := newServiceHarness(t, testConfig())
	require.NoError(t, h.svc.Start())
	before := h.svc.controller()

	var seen *config.Config
	h.svc.OnReload(func(c *config.Config) { seen = c })

	next := testConfig()
	next.DebounceMs = 300
	require.NoError(t, h.svc.Apply(next))

	assert.Same(t, before, h.svc.controller())
	st := h.svc.Status()
	assert.Equal(t, int64(300), st.DebounceMs)
	assert.Equal(t, 1, st.Reloads)
	assert.Same(t, next, seen)
}

func TestService_ApplyDockChangeRebuilds(t *testing.T) {
	h := newServiceHarness(t, testConfig())
	h.backend.show("video", testScreen)
	require.NoError(t, h.svc.Start())
	before := h.svc.controller()

	next := testConfig()
	next.Dock.Backend = "plank"
	require.NoError(t, h.svc.Apply(next))

	after := h.svc.controller()
	assert.NotSame(t, before, after)
	assert.False(t, before.Running())
	assert.True(t, after.Running())
	assert.Equal(t, "plank", h.svc.Status().Backend)
	assert.Equal(t, "hidden", h.svc.Status().State)
}

func TestService_ApplyDockChangeKeepsDockHidden(t *testing.T) {
	backend := newFakeBackend()
	events := &platform.Dispatcher{}
	sched := &manualScheduler{}
	shim := dockaccess.NewMemory(false)
	built := 0
	build := func(cfg *config.Config) (*Controller, error) {
		built++
		logger := discardLogger()
		provider := dock.NewProvider(logger,
			&dock.Introspector{Backend: backend},
			&dock.Formula{Backend: backend, Logger: logger},
		)
		return NewController(ControllerConfig(cfg), Deps{
			Backend:   backend,
			Events:    events,
			Shim:      shim,
			Geometry:  provider,
			Scheduler: sched,
			Logger:    logger,
		}), nil
	}
	svc, err := NewService(ServiceOptions{Config: testConfig(), Build: build, Logger: discardLogger()})
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	backend.show("video", testScreen)
	require.NoError(t, svc.Start())
	require.True(t, hidden(t, shim))

	next := testConfig()
	next.Dock.Backend = "plank"
	require.NoError(t, svc.Apply(next))

	assert.Equal(t, 2, built)
	assert.True(t, svc.Status().Running)
	assert.True(t, hidden(t, shim))
	assert.Equal(t, []bool{true}, shim.History())
}

func TestService_ApplyKeepsOldConfigOnBuildFailure(t *testing.T) {
	h := newServiceHarness(t, testConfig())
	require.NoError(t, h.svc.Start())
	before := h.svc.controller()

	bad := testConfig()
	bad.Dock.Backend = "cairo"
	assert.Error(t, h.svc.Apply(bad))

	assert.Same(t, before, h.svc.controller())
	assert.True(t, before.Running())
	assert.Equal(t, "xfce", h.svc.Config().Dock.Backend)
}

func TestService_Reload(t *testing.T) {
	h := newServiceHarness(t, testConfig())
	assert.Error(t, h.svc.Reload(), "reload without a loader")

	loaded := testConfig()
	loaded.MaximizeTolerance = 12
	h.svc.load = func() (*config.Config, error) { return loaded, nil }
	require.NoError(t, h.svc.Reload())
	assert.Equal(t, 12, h.svc.Config().MaximizeTolerance)

	h.svc.load = func() (*config.Config, error) { return nil, errors.New("bad yaml") }
	assert.Error(t, h.svc.Reload())
	assert.Equal(t, 12, h.svc.Config().MaximizeTolerance)
}
