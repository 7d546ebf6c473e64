package ai

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync"

	"catdog/internal/logger"
	"catdog/internal/service/classifier"

	"gocv.io/x/gocv"
)

// OpenCVModel runs the classifier through the OpenCV DNN module.
type OpenCVModel struct {
	net       gocv.Net
	modelPath string
	logger    *logger.Logger
	mu        sync.Mutex
}

// NewOpenCVModel reads the network from modelPath (ONNX, TensorFlow .pb, ...).
func NewOpenCVModel(modelPath string, logger *logger.Logger) (*OpenCVModel, error) {
	m := &OpenCVModel{
		modelPath: modelPath,
		logger:    logger,
	}

	if err := m.initializeNet(); err != nil {
		return nil, err
	}

	return m, nil
}

// initializeNet loads the network and pins it to the CPU.
func (m *OpenCVModel) initializeNet() error {
	if _, err := os.Stat(m.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", m.modelPath)
	}

	net := gocv.ReadNet(m.modelPath, "")
	if net.Empty() {
		return fmt.Errorf("failed to load network from %s", m.modelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	m.net = net
	m.logger.Info("🤖 OpenCV network loaded from %s", m.modelPath)
	return nil
}

// Predict feeds the NHWC tensor as a 4-D float blob and reads the single output value.
func (m *OpenCVModel) Predict(t classifier.Tensor) (float32, error) {
	if err := checkShape(t); err != nil {
		return 0, err
	}

	sizes := make([]int, len(t.Shape))
	for i, d := range t.Shape {
		sizes[i] = int(d)
	}

	blob, err := gocv.NewMatWithSizesFromBytes(sizes, gocv.MatTypeCV32F, float32Bytes(t.Data))
	if err != nil {
		return 0, fmt.Errorf("failed to build input blob: %w", err)
	}
	defer blob.Close()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.net.Empty() {
		return 0, fmt.Errorf("network not initialized")
	}

	m.net.SetInput(blob, "")
	output := m.net.Forward("")
	defer output.Close()

	if output.Empty() || output.Total() < 1 {
		return 0, fmt.Errorf("network returned no output")
	}

	flat := output.Reshape(1, 1)
	defer flat.Close()
	return flat.GetFloatAt(0, 0), nil
}

func (m *OpenCVModel) Backend() string {
	return BackendOpenCV
}

func (m *OpenCVModel) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.net.Close()
}

// float32Bytes encodes values in the host (little-endian) layout OpenCV expects.
func float32Bytes(values []float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
