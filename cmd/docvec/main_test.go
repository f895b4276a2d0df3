package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newTestApp(name string, action cli.ActionFunc, flags []cli.Flag) *cli.App {
	return &cli.App{
		Name: "docvec",
		Commands: []*cli.Command{
			{
				Name:   name,
				Action: action,
				Flags:  flags,
			},
		},
	}
}

func TestIngestCommandValidation(t *testing.T) {
	app := newTestApp("ingest", ingestCommand, []cli.Flag{
		&cli.BoolFlag{Name: "force"},
		&cli.BoolFlag{Name: "transcript"},
		&cli.IntFlag{Name: "batch-size", Value: 32},
		&cli.IntFlag{Name: "max-retries", Value: 3},
	})

	t.Run("no input files fails", func(t *testing.T) {
		err := app.Run([]string{"docvec", "ingest"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input file")
	})

	t.Run("non-positive batch-size fails", func(t *testing.T) {
		err := app.Run([]string{"docvec", "ingest", "--batch-size", "0", "doc.md"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch-size")
	})

	t.Run("non-positive max-retries fails", func(t *testing.T) {
		err := app.Run([]string{"docvec", "ingest", "--max-retries", "-1", "doc.md"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max-retries")
	})
}

func TestSearchCommandValidation(t *testing.T) {
	app := newTestApp("search", searchCommand, []cli.Flag{
		&cli.IntFlag{Name: "top-k", Value: 5},
	})

	t.Run("missing query fails", func(t *testing.T) {
		err := app.Run([]string{"docvec", "search", "https://example.com/doc"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "usage")
	})

	t.Run("missing source fails", func(t *testing.T) {
		err := app.Run([]string{"docvec", "search"})
		require.Error(t, err)
	})
}

func TestListCommandValidation(t *testing.T) {
	app := newTestApp("list", listCommand, []cli.Flag{
		&cli.BoolFlag{Name: "text"},
	})

	err := app.Run([]string{"docvec", "list"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage")
}

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, tc := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(tc, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "one", firstLine("one\ntwo\nthree"))
	assert.Equal(t, "short", firstLine("short"))

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	got := firstLine(string(long))
	assert.Len(t, got, 123)
	assert.Contains(t, got, "...")
}
