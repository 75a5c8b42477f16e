package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given level and formatter names", t, func() {
		So(ParseLevel("DEBUG"), ShouldEqual, log.DebugLevel)
		So(ParseLevel("nonsense"), ShouldEqual, log.InfoLevel)
		So(ParseFormatter("json"), ShouldEqual, log.JSONFormatter)
		So(ParseFormatter(""), ShouldEqual, log.TextFormatter)
	})
}

func TestInitWithFile(t *testing.T) {
	Convey("Given a log file path", t, func() {
		path := filepath.Join(t.TempDir(), "agent.log")

		So(Init(Config{Level: "info", Formatter: "logfmt", File: path}), ShouldBeNil)
		defer func() {
			Close()
			log.SetDefault(log.New(os.Stderr))
		}()

		log.Info("turn processed", "intent", "greeting")

		Convey("Then entries land in the file", func() {
			raw, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(strings.Contains(string(raw), "intent=greeting"), ShouldBeTrue)
		})
	})
}
