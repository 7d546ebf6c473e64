package classifier

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedModel always answers with the same score.
type fixedModel struct {
	score float32
	err   error
	calls int
}

func (m *fixedModel) Predict(t Tensor) (float32, error) {
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	return m.score, nil
}

// meanModel returns the mean of the tensor, so its output depends on the input.
type meanModel struct{}

func (meanModel) Predict(t Tensor) (float32, error) {
	var sum float64
	for _, v := range t.Data {
		sum += float64(v)
	}
	return float32(sum / float64(len(t.Data))), nil
}

func gradientImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / max(w-1, 1)), G: uint8(y * 255 / max(h-1, 1)), B: 128, A: 255})
		}
	}
	return img
}

func uniformImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestPreprocess_ShapeAndRange(t *testing.T) {
	sizes := []struct {
		name string
		w, h int
	}{
		{"tiny", 1, 1},
		{"small", 32, 17},
		{"exact", InputSize, InputSize},
		{"wide", 640, 120},
		{"tall", 90, 1024},
	}

	for _, tt := range sizes {
		t.Run(tt.name, func(t *testing.T) {
			tensor, err := Preprocess(gradientImage(tt.w, tt.h))
			require.NoError(t, err)

			assert.Equal(t, [4]int64{1, 180, 180, 3}, tensor.Shape)
			require.Len(t, tensor.Data, 180*180*3)
			assert.Equal(t, tensor.Len(), len(tensor.Data))

			for i, v := range tensor.Data {
				if v < 0 || v > 1 {
					t.Fatalf("value %d out of range: %v", i, v)
				}
			}
		})
	}
}

func TestPreprocess_ScalesBy255(t *testing.T) {
	tensor, err := Preprocess(uniformImage(50, 70, color.RGBA{R: 255, G: 0, B: 51, A: 255}))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, tensor.At(0, 0, 0, 0), 1e-6)
	assert.InDelta(t, 0.0, tensor.At(0, 90, 90, 1), 1e-6)
	assert.InDelta(t, 0.2, tensor.At(0, 179, 179, 2), 1e-6)
}

func TestPreprocess_DropsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
		}
	}

	tensor, err := Preprocess(img)
	require.NoError(t, err)

	// Fully transparent white stays white.
	assert.InDelta(t, 1.0, tensor.At(0, 5, 5, 0), 1e-6)
}

func TestPreprocess_Idempotent(t *testing.T) {
	img := gradientImage(333, 211)

	first, err := Preprocess(img)
	require.NoError(t, err)
	second, err := Preprocess(img)
	require.NoError(t, err)

	assert.Equal(t, first.Shape, second.Shape)
	assert.Equal(t, first.Data, second.Data)
}

func TestPreprocess_NilImage(t *testing.T) {
	_, err := Preprocess(nil)
	assert.ErrorIs(t, err, ErrNilImage)
}

func TestDecide_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		p          float64
		label      string
		confidence float64
	}{
		{"clear cat", 0.1, LabelCat, 0.9},
		{"clear dog", 0.9, LabelDog, 0.9},
		{"certain cat", 0.0, LabelCat, 1.0},
		{"certain dog", 1.0, LabelDog, 1.0},
		{"tie goes to dog", 0.5, LabelDog, 0.5},
		{"just below tie", 0.4999, LabelCat, 0.5001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.p)
			assert.Equal(t, tt.label, got.Label)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
			assert.Equal(t, tt.p, got.RawScore)
		})
	}
}

func TestDecide_ConfidenceBounds(t *testing.T) {
	for i := 0; i <= 1000; i++ {
		p := float64(i) / 1000
		got := Decide(p)
		if got.Confidence < 0.5 || got.Confidence > 1.0 {
			t.Fatalf("Decide(%v) confidence %v out of [0.5,1]", p, got.Confidence)
		}
	}
}

func TestClassify_UsesModelOutput(t *testing.T) {
	tensor, err := Preprocess(gradientImage(20, 20))
	require.NoError(t, err)

	model := &fixedModel{score: 0.1}
	got, err := Classify(tensor, model)
	require.NoError(t, err)

	assert.Equal(t, 1, model.calls)
	assert.Equal(t, LabelCat, got.Label)
	assert.InDelta(t, 0.9, got.Confidence, 1e-6)

	model.score = 0.9
	got, err = Classify(tensor, model)
	require.NoError(t, err)
	assert.Equal(t, LabelDog, got.Label)
	assert.InDelta(t, 0.9, got.Confidence, 1e-6)
}

func TestClassify_Deterministic(t *testing.T) {
	tensor, err := Preprocess(gradientImage(64, 48))
	require.NoError(t, err)

	first, err := Classify(tensor, meanModel{})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Classify(tensor, meanModel{})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestClassify_PropagatesModelError(t *testing.T) {
	boom := errors.New("bad input shape")
	_, err := Classify(Tensor{Shape: InputShape}, &fixedModel{err: boom})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestClassify_RejectsInvalidOutput(t *testing.T) {
	invalid := []float32{
		-0.01,
		1.5,
		float32(math.NaN()),
		float32(math.Inf(1)),
		float32(math.Inf(-1)),
	}
	for _, score := range invalid {
		_, err := Classify(Tensor{Shape: InputShape}, &fixedModel{score: score})
		assert.ErrorIs(t, err, ErrInvalidOutput, "score %v", score)
	}
}

func TestClassify_AcceptsExactBounds(t *testing.T) {
	got, err := Classify(Tensor{Shape: InputShape}, &fixedModel{score: 0})
	require.NoError(t, err)
	assert.Equal(t, Prediction{Label: LabelCat, Confidence: 1, RawScore: 0}, got)

	got, err = Classify(Tensor{Shape: InputShape}, &fixedModel{score: 1})
	require.NoError(t, err)
	assert.Equal(t, Prediction{Label: LabelDog, Confidence: 1, RawScore: 1}, got)
}

func TestClassify_NilModel(t *testing.T) {
	_, err := Classify(Tensor{Shape: InputShape}, nil)
	assert.ErrorIs(t, err, ErrNilModel)
}

func TestClassifyImage(t *testing.T) {
	got, err := ClassifyImage(uniformImage(10, 10, color.White), meanModel{})
	require.NoError(t, err)

	assert.Equal(t, LabelDog, got.Label)
	assert.InDelta(t, 1.0, got.Confidence, 1e-6)
}
