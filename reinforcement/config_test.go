package reinforcement

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const testConfig = `
kind: gridnav
def:
  hyperParams:
  - key: gamma
    val: 0.8
  - key: maxIter
    val: 50
  settings:
    shutdownTimeout: 3s
`

func TestFromYaml(t *testing.T) {
	Convey("When the config is read from yaml", t, func() {
		path := filepath.Join(t.TempDir(), "config.yaml")
		So(os.WriteFile(path, []byte(testConfig), 0o600), ShouldBeNil)

		sc, err := FromYaml(path)
		So(err, ShouldBeNil)

		Convey("Given params override the defaults, the rest are defaulted", func() {
			cfg := sc.Config()
			So(cfg.Gamma, ShouldEqual, 0.8)
			So(cfg.MaxIter, ShouldEqual, 50)
			So(cfg.Theta, ShouldEqual, DefaultConfig().Theta)
			So(cfg.GoalBonus, ShouldEqual, 5.0)
			So(cfg.Validate(), ShouldBeNil)
		})

		Convey("Settings are parsed as durations", func() {
			timeout, err := sc.GetDurationOrDefault("shutdownTimeout", time.Second)
			So(err, ShouldBeNil)
			So(timeout, ShouldEqual, 3*time.Second)

			missing, err := sc.GetDurationOrDefault("publishResolution", time.Second)
			So(err, ShouldBeNil)
			So(missing, ShouldEqual, time.Second)
		})
	})

	Convey("When the config file is missing", t, func() {
		_, err := FromYaml(filepath.Join(t.TempDir(), "nope.yaml"))
		So(err, ShouldNotBeNil)
	})
}

func TestValidate(t *testing.T) {
	Convey("When the config is validated", t, func() {
		So(DefaultConfig().Validate(), ShouldBeNil)

		for _, mutate := range []func(*Config){
			func(c *Config) { c.Gamma = 1 },
			func(c *Config) { c.Gamma = -0.1 },
			func(c *Config) { c.Theta = 0 },
			func(c *Config) { c.MaxIter = 0 },
		} {
			cfg := DefaultConfig()
			mutate(&cfg)
			So(errors.Is(cfg.Validate(), ErrInvalidConfig), ShouldBeTrue)
		}
	})
}
