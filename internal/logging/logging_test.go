package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditor_Failure(t *testing.T) {
	var buf bytes.Buffer
	a := NewAuditor(NewWithOutput(&buf, "info", true))

	ctx := WithRequestID(context.Background(), "req-1")
	a.Failure(ctx, "reservation.create", errors.New("deadlock"), map[string]any{"category_id": 3})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "reservation.create", line["op"])
	assert.Equal(t, "deadlock", line["error"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.EqualValues(t, 3, line["category_id"])
}

func TestAuditor_Warning(t *testing.T) {
	var buf bytes.Buffer
	a := NewAuditor(NewWithOutput(&buf, "info", true))
	a.Warning(context.Background(), "notify", errors.New("broker down"), map[string]any{"reservation_id": 9})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "notify", line["op"])
	assert.Equal(t, "broker down", line["error"])
	assert.EqualValues(t, 9, line["reservation_id"])
}

func TestAuditor_NilFields(t *testing.T) {
	var buf bytes.Buffer
	a := NewAuditor(NewWithOutput(&buf, "info", true))
	a.Failure(context.Background(), "reservation.list", errors.New("timeout"), nil)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.NotContains(t, line, "request_id")
}

func TestNew_Level(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewWithOutput(&bytes.Buffer{}, "debug", false).GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewWithOutput(&bytes.Buffer{}, "loud", false).GetLevel())
}
