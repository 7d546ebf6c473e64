package ai

import (
	"errors"
	"fmt"
	"strings"

	"catdog/internal/config"
	"catdog/internal/logger"
	"catdog/internal/service/classifier"
)

const (
	BackendONNX   = "onnx"
	BackendOpenCV = "opencv"
)

// ErrShapeMismatch is returned when a tensor does not match the model input.
var ErrShapeMismatch = errors.New("tensor shape does not match model input")

// ModelService is a classifier.Model that holds native resources.
type ModelService interface {
	classifier.Model
	Backend() string
	Close()
}

// NewModel loads the model at modelPath with the backend selected in the config.
func NewModel(cfg *config.Config, modelPath string, logger *logger.Logger) (ModelService, error) {
	switch strings.ToLower(cfg.ModelBackend) {
	case "", BackendONNX:
		return NewONNXModel(modelPath, cfg.ONNXLibraryPath, cfg.ONNXInputName, cfg.ONNXOutputName, logger)
	case BackendOpenCV:
		return NewOpenCVModel(modelPath, logger)
	default:
		return nil, fmt.Errorf("unknown model backend %q (expected %q or %q)", cfg.ModelBackend, BackendONNX, BackendOpenCV)
	}
}

// checkShape verifies the tensor against the fixed classifier input.
func checkShape(t classifier.Tensor) error {
	if t.Shape != classifier.InputShape {
		return fmt.Errorf("%w: got %v, want %v", ErrShapeMismatch, t.Shape, classifier.InputShape)
	}
	if len(t.Data) != t.Len() {
		return fmt.Errorf("%w: %d values for shape %v", ErrShapeMismatch, len(t.Data), t.Shape)
	}
	return nil
}
