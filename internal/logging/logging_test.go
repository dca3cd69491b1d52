package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/contextmenu/internal/logging"
)

func TestNew(t *testing.T) {
	c := qt.New(t)

	c.Run("json handler", func(c *qt.C) {
		var buf bytes.Buffer
		logging.New("info", "json", &buf).Info("hello", "key", "v")

		var rec map[string]any
		c.Assert(json.Unmarshal(buf.Bytes(), &rec), qt.IsNil)
		c.Assert(rec["msg"], qt.Equals, "hello")
		c.Assert(rec["key"], qt.Equals, "v")
	})

	c.Run("level filters", func(c *qt.C) {
		var buf bytes.Buffer
		log := logging.New("warn", "text", &buf)
		log.Info("dropped")
		log.Warn("kept")
		c.Assert(buf.String(), qt.Not(qt.Contains), "dropped")
		c.Assert(buf.String(), qt.Contains, "msg=kept")
	})

	c.Run("unknown level means info", func(c *qt.C) {
		var buf bytes.Buffer
		log := logging.New("loud", "text", &buf)
		log.Debug("dropped")
		log.Info("kept")
		c.Assert(buf.String(), qt.Not(qt.Contains), "dropped")
		c.Assert(buf.String(), qt.Contains, "kept")
	})
}

func TestValidate(t *testing.T) {
	c := qt.New(t)

	c.Assert(logging.Validate("DEBUG", "json"), qt.IsNil)
	c.Assert(logging.Validate("error", "text"), qt.IsNil)
	c.Assert(logging.Validate("trace", "text"), qt.ErrorMatches, `unknown log level "trace".*`)
	c.Assert(logging.Validate("info", "xml"), qt.ErrorMatches, `unknown log format "xml".*`)
}
