package logging

import (
	"bytes"
	"context"
	"testing"

	"kohchanghospital.go.th/admin/src/oops"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestPrettyWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(NewPrettyZerologWriter(&buf))

	logger.Error().
		Str("route", "GET /news").
		Err(oops.New(nil, "backend refused")).
		Msg("request failed")

	out := buf.String()
	assert.Contains(t, out, "request failed")
	assert.Contains(t, out, "backend refused")
	assert.Contains(t, out, "route")
	assert.Contains(t, out, "GET /news")
}

func TestPrettyWriterPassesThroughGarbage(t *testing.T) {
	var buf bytes.Buffer
	w := NewPrettyZerologWriter(&buf)
	n, err := w.Write([]byte("not json\n"))
	assert.Nil(t, err)
	assert.Equal(t, 9, n)
	assert.Equal(t, "not json\n", buf.String())
}

func TestExtractLogger(t *testing.T) {
	assert.Equal(t, GlobalLogger(), ExtractLogger(context.Background()))

	logger := zerolog.Nop()
	ctx := AttachLoggerToContext(&logger, context.Background())
	assert.Equal(t, &logger, ExtractLogger(ctx))
}
