package ai

import (
	"fmt"
	"os"
	"sync"

	"catdog/internal/logger"
	"catdog/internal/service/classifier"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXModel runs the classifier through ONNX Runtime with preallocated tensors.
type ONNXModel struct {
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	inputName    string
	outputName   string
	logger       *logger.Logger
	mu           sync.Mutex
}

// NewONNXModel initializes the ONNX environment and opens a session for modelPath.
// Empty input/output names are read from the model file.
func NewONNXModel(modelPath, libraryPath, inputName, outputName string, logger *logger.Logger) (*ONNXModel, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", modelPath)
	}

	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model inputs/outputs: %w", err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("expected 1 input and 1 output, model has %d and %d", len(inputs), len(outputs))
	}
	if inputName == "" {
		inputName = inputs[0].Name
	}
	if outputName == "" {
		outputName = outputs[0].Name
	}

	outShape, err := outputShape(outputs[0].Dimensions)
	if err != nil {
		return nil, err
	}

	shape := classifier.InputShape
	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(shape[:]...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](outShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{inputName}, []string{outputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	logger.Info("🤖 ONNX model loaded from %s (input %q, output %q %v)", modelPath, inputName, outputName, outShape)

	return &ONNXModel{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		inputName:    inputName,
		outputName:   outputName,
		logger:       logger,
	}, nil
}

// outputShape turns the declared output dimensions into a concrete shape.
// Dynamic dimensions (-1) become 1; the result must hold exactly one value,
// so both [1] and [1,1] outputs work.
func outputShape(dims ort.Shape) (ort.Shape, error) {
	if len(dims) == 0 {
		return ort.NewShape(1), nil
	}

	shape := make(ort.Shape, len(dims))
	for i, d := range dims {
		if d <= 0 {
			d = 1
		}
		shape[i] = d
	}
	if shape.FlattenedSize() != 1 {
		return nil, fmt.Errorf("%w: model output %v is not a single score", ErrShapeMismatch, dims)
	}
	return shape, nil
}

// Predict copies the tensor into the session input, runs it and returns the single output value.
func (m *ONNXModel) Predict(t classifier.Tensor) (float32, error) {
	if err := checkShape(t); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	copy(m.inputTensor.GetData(), t.Data)

	if err := m.session.Run(); err != nil {
		return 0, fmt.Errorf("onnx run failed: %w", err)
	}

	out := m.outputTensor.GetData()
	if len(out) == 0 {
		return 0, fmt.Errorf("onnx run returned no output")
	}
	return out[0], nil
}

func (m *ONNXModel) Backend() string {
	return BackendONNX
}

// Close releases tensors, the session and the ONNX environment.
func (m *ONNXModel) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inputTensor != nil {
		m.inputTensor.Destroy()
		m.inputTensor = nil
	}
	if m.outputTensor != nil {
		m.outputTensor.Destroy()
		m.outputTensor = nil
	}
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
	ort.DestroyEnvironment()
}
