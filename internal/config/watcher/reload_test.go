package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/typedconf/internal/config"
	"github.com/dshills/typedconf/internal/config/loader"
	"github.com/dshills/typedconf/internal/config/notify"
	"github.com/dshills/typedconf/internal/config/store"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestReloader_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	writeFile(t, path, "[detector]\nthreads = 2\n[telescope]\nplanes = 6\n")

	l, err := loader.NewFileLoader(path)
	require.NoError(t, err)

	detector := store.NewSection("detector")
	telescope := store.NewSection("telescope")
	r := NewReloader(l, nil, detector, telescope)

	require.NoError(t, r.Reload())
	assert.Equal(t, map[string]string{"threads": "2"}, detector.Snapshot())
	assert.Equal(t, map[string]string{"planes": "6"}, telescope.Snapshot())

	writeFile(t, path, "[detector]\nthreads = 8\npitch = [55, 55]\n")
	require.NoError(t, r.Reload())
	assert.Equal(t, map[string]string{"threads": "8", "pitch": "55,55"}, detector.Snapshot())
	assert.Equal(t, 0, telescope.Len())
}

func TestReloader_ErrorKeepsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	writeFile(t, path, "[detector]\nthreads = 2\n")

	l, err := loader.NewFileLoader(path)
	require.NoError(t, err)
	detector := store.NewSection("detector")
	r := NewReloader(l, nil, detector)
	require.NoError(t, r.Reload())

	writeFile(t, path, "[detector\nthreads = \n")
	err = r.Reload()
	var perr *loader.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, map[string]string{"threads": "2"}, detector.Snapshot())
}

func TestReloader_LiveConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	writeFile(t, path, "[detector]\nthreads = 2\n")

	l, err := loader.NewFileLoader(path)
	require.NoError(t, err)
	detector := store.NewSection("detector")
	r := NewReloader(l, nil, detector)
	require.NoError(t, r.Reload())
	cfg := config.New(detector)

	w := New(WithDebounce(50 * time.Millisecond))
	w.OnChange(r.Handler())
	require.NoError(t, w.Watch(path))
	require.NoError(t, w.Start())
	defer w.Stop()

	writeFile(t, path, "[detector]\nthreads = 12\n")

	assert.Eventually(t, func() bool {
		threads, err := cfg.GetInt("threads")
		return err == nil && threads == 12
	}, 5*time.Second, 20*time.Millisecond)
}

func TestReloader_PublishesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	writeFile(t, path, "[detector]\nthreads = 2\nname = \"dut\"\n")

	l, err := loader.NewFileLoader(path)
	require.NoError(t, err)
	detector := store.NewSection("detector")
	r := NewReloader(l, nil, detector)
	require.NoError(t, r.Reload())

	n := notify.New()
	defer n.Close()
	var changes []notify.Change
	n.Subscribe(func(c notify.Change) { changes = append(changes, c) })
	r.SetNotifier(n)

	writeFile(t, path, "[detector]\nthreads = 4\nname = \"dut\"\n")
	require.NoError(t, r.Reload())

	assert.Equal(t, []notify.Change{
		{Section: "detector", Key: "threads", Type: notify.ChangeSet, OldValue: "2", NewValue: "4", Source: "reload"},
		{Section: "detector", Type: notify.ChangeReload, Source: "reload"},
	}, changes)
}
