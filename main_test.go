package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"gridnav/reinforcement"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	Convey("When the config file does not exist", t, func() {
		fileConfig, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), logger)
		So(err, ShouldBeNil)
		So(fileConfig.Config(), ShouldResemble, reinforcement.DefaultConfig())
	})

	Convey("When the shipped config is loaded", t, func() {
		fileConfig, err := loadConfig("./config.yaml", logger)
		So(err, ShouldBeNil)
		cfg := fileConfig.Config()
		So(cfg, ShouldResemble, reinforcement.DefaultConfig())
		So(cfg.Validate(), ShouldBeNil)
	})
}

func TestRunDemo(t *testing.T) {
	Convey("When the demo grid is solved", t, func() {
		So(runDemo(reinforcement.DefaultConfig()), ShouldBeNil)
	})
}

func TestNewLogger(t *testing.T) {
	Convey("When the logger is created", t, func() {
		So(newLogger(false).Enabled(context.Background(), slog.LevelDebug), ShouldBeFalse)
		So(newLogger(true).Enabled(context.Background(), slog.LevelDebug), ShouldBeTrue)
	})
}
