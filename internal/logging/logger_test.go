package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaceAttrRenamesErrorKey(t *testing.T) {
	a := replaceAttr(nil, slog.String("error", "boom"))
	assert.Equal(t, "err", a.Key)

	b := replaceAttr(nil, slog.String("element", "hero"))
	assert.Equal(t, "element", b.Key)
}

func TestNewNopDiscardsEverything(t *testing.T) {
	logger := NewNop()
	// Must not panic and must accept any level.
	logger.Debug("debug", "k", "v")
	logger.Error("error", "err", "boom")
	assert.NotNil(t, logger)
}
