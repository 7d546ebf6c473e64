package ai

import (
	"bytes"
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"catdog/internal/config"
	"catdog/internal/logger"
	"catdog/internal/service/classifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ort "github.com/yalue/onnxruntime_go"
)

func testLogger() *logger.Logger {
	return logger.NewWriterLogger(&bytes.Buffer{})
}

func TestCheckShape(t *testing.T) {
	good := classifier.Tensor{Shape: classifier.InputShape, Data: make([]float32, 180*180*3)}
	assert.NoError(t, checkShape(good))

	wrongShape := classifier.Tensor{Shape: [4]int64{1, 224, 224, 3}, Data: make([]float32, 224*224*3)}
	assert.ErrorIs(t, checkShape(wrongShape), ErrShapeMismatch)

	shortData := classifier.Tensor{Shape: classifier.InputShape, Data: make([]float32, 10)}
	assert.ErrorIs(t, checkShape(shortData), ErrShapeMismatch)
}

func TestFloat32Bytes(t *testing.T) {
	values := []float32{0, 0.5, 1, -2.25}
	buf := float32Bytes(values)
	require.Len(t, buf, 16)

	for i, v := range values {
		bits := binary.LittleEndian.Uint32(buf[i*4:])
		assert.Equal(t, v, math.Float32frombits(bits))
	}
}

func TestNewModel_UnknownBackend(t *testing.T) {
	cfg := &config.Config{ModelBackend: "tflite"}
	_, err := NewModel(cfg, "model.onnx", testLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model backend")
}

func TestNewModel_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.onnx")

	for _, backend := range []string{BackendONNX, BackendOpenCV} {
		t.Run(backend, func(t *testing.T) {
			cfg := &config.Config{ModelBackend: backend}
			_, err := NewModel(cfg, missing, testLogger())

			require.Error(t, err)
			assert.Contains(t, err.Error(), "model file not found")
		})
	}
}

func TestOutputShape(t *testing.T) {
	tests := []struct {
		name string
		dims ort.Shape
		want ort.Shape
	}{
		{"rank one", ort.NewShape(1), ort.NewShape(1)},
		{"rank two", ort.NewShape(1, 1), ort.NewShape(1, 1)},
		{"dynamic batch", ort.NewShape(-1, 1), ort.NewShape(1, 1)},
		{"undeclared", nil, ort.NewShape(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outputShape(tt.dims)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := outputShape(ort.NewShape(1, 2))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
