package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/okian/flowboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"FLOWBOARD_CONFIG",
		"FLOWBOARD_ADDR",
		"FLOWBOARD_LOG_LEVEL",
		"FLOWBOARD_STORE_PATH",
		"FLOWBOARD_NOTIFY_QUEUE_SIZE",
		"FLOWBOARD_NOTIFY_WORKER_COUNT",
		"FLOWBOARD_BOTTLENECK_THRESHOLD",
		"FLOWBOARD_MAX_SEARCH_RESULTS",
		"FLOWBOARD_PERSIST_MAX_RETRIES",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "flowboard-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.NotifyQueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.StorePath, convey.ShouldEqual, "boards.json")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("FLOWBOARD_ADDR", ":8080")
			_ = os.Setenv("FLOWBOARD_NOTIFY_QUEUE_SIZE", "64")
			_ = os.Setenv("FLOWBOARD_STORE_PATH", "/tmp/b.json")
			_ = os.Setenv("FLOWBOARD_BOTTLENECK_THRESHOLD", "25")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.NotifyQueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.StorePath, convey.ShouldEqual, "/tmp/b.json")
				convey.So(cfg.BottleneckThreshold, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
addr: ":9090"
log_level: debug
notify_queue_size: 256
notify_worker_count: 4
max_search_results: 50
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("FLOWBOARD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.NotifyQueueSize, convey.ShouldEqual, 256)
				convey.So(cfg.NotifyWorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.MaxSearchResults, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When file and environment both set a key", func() {
			tmpFile := createTempConfigFile(t, "addr: \":9090\"\n")
			_ = os.Setenv("FLOWBOARD_CONFIG", tmpFile)
			_ = os.Setenv("FLOWBOARD_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the environment should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("FLOWBOARD_CONFIG", "/nonexistent/flowboard.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading should fail with a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When a value fails validation", func() {
			_ = os.Setenv("FLOWBOARD_NOTIFY_QUEUE_SIZE", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading should fail with an invalid config error", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
