// Package classifier turns a decoded image into the model input tensor and
// the model's scalar output into a cat/dog decision.
package classifier

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/nfnt/resize"
)

const (
	// InputSize is the square spatial resolution the model expects.
	InputSize = 180
	// Channels is the number of colour channels in the tensor (RGB).
	Channels = 3
	// Threshold separates "dog" (p >= Threshold) from "cat".
	Threshold = 0.5

	LabelCat = "cat"
	LabelDog = "dog"
)

var (
	ErrNilImage      = errors.New("image is nil")
	ErrNilModel      = errors.New("model is nil")
	ErrInvalidOutput = errors.New("model returned a value outside [0,1]")
)

// InputShape is the NHWC shape of every tensor produced by Preprocess.
var InputShape = [4]int64{1, InputSize, InputSize, Channels}

// Tensor is a dense float32 array in row-major NHWC order.
type Tensor struct {
	Shape [4]int64
	Data  []float32
}

// Len returns the number of elements implied by the shape.
func (t Tensor) Len() int {
	n := int64(1)
	for _, d := range t.Shape {
		n *= d
	}
	return int(n)
}

// At returns the value at batch b, row y, column x, channel c.
func (t Tensor) At(b, y, x, c int) float32 {
	h, w, ch := int(t.Shape[1]), int(t.Shape[2]), int(t.Shape[3])
	return t.Data[((b*h+y)*w+x)*ch+c]
}

// Model is a loaded binary classifier. Predict returns the probability that
// the image shows a dog.
type Model interface {
	Predict(t Tensor) (float32, error)
}

// Prediction is the human-facing decision derived from one model output.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	RawScore   float64 `json:"rawScore"`
}

// Preprocess resizes img to InputSize x InputSize, scales every channel to
// [0,1] and adds the batch dimension.
func Preprocess(img image.Image) (Tensor, error) {
	if img == nil {
		return Tensor{}, ErrNilImage
	}

	resized := resize.Resize(InputSize, InputSize, opaque(img), resize.Bilinear)
	bounds := resized.Bounds()

	t := Tensor{
		Shape: InputShape,
		Data:  make([]float32, InputSize*InputSize*Channels),
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			t.Data[i] = float32(r>>8) / 255.0
			t.Data[i+1] = float32(g>>8) / 255.0
			t.Data[i+2] = float32(b>>8) / 255.0
			i += Channels
		}
	}

	return t, nil
}

// opaque copies img into an RGBA bitmap with alpha forced to 255. Colour values
// are taken un-premultiplied, so transparent pixels keep their RGB.
func opaque(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			i := out.PixOffset(x-b.Min.X, y-b.Min.Y)
			out.Pix[i] = c.R
			out.Pix[i+1] = c.G
			out.Pix[i+2] = c.B
			out.Pix[i+3] = 0xff
		}
	}
	return out
}

// Classify runs the model once and applies the decision rule.
func Classify(t Tensor, model Model) (Prediction, error) {
	if model == nil {
		return Prediction{}, ErrNilModel
	}

	p, err := model.Predict(t)
	if err != nil {
		return Prediction{}, fmt.Errorf("inference failed: %w", err)
	}

	raw := float64(p)
	if math.IsNaN(raw) || raw < 0 || raw > 1 {
		return Prediction{}, fmt.Errorf("%w: %v", ErrInvalidOutput, p)
	}

	return Decide(raw), nil
}

// Decide maps a dog probability to a label and the probability of that label.
func Decide(p float64) Prediction {
	if p >= Threshold {
		return Prediction{Label: LabelDog, Confidence: p, RawScore: p}
	}
	return Prediction{Label: LabelCat, Confidence: 1 - p, RawScore: p}
}

// ClassifyImage is Preprocess followed by Classify.
func ClassifyImage(img image.Image, model Model) (Prediction, error) {
	t, err := Preprocess(img)
	if err != nil {
		return Prediction{}, err
	}
	return Classify(t, model)
}
