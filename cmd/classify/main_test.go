package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"catdog/internal/service/classifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedModel float32

func (m fixedModel) Predict(classifier.Tensor) (float32, error) { return float32(m), nil }

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(0, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestCollectImages(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"))
	writePNG(t, filepath.Join(dir, "a.PNG"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	single := filepath.Join(t.TempDir(), "single.jpg")
	require.NoError(t, os.WriteFile(single, []byte("x"), 0644))

	files, err := collectImages([]string{dir, single})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.PNG"),
		filepath.Join(dir, "b.png"),
		single,
	}, files)

	_, err = collectImages([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestClassifyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pet.png")
	writePNG(t, path)

	res := classifyFile(path, fixedModel(0.2), 0)
	assert.Empty(t, res.Error)
	assert.Equal(t, classifier.LabelCat, res.Label)
	assert.InDelta(t, 0.8, res.Confidence, 1e-6)

	bad := filepath.Join(dir, "bad.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0644))
	res = classifyFile(bad, fixedModel(0.9), 0)
	assert.Contains(t, res.Error, "invalid image")
	assert.Empty(t, res.Label)

	res = classifyFile(path, fixedModel(0.9), 8*8-1)
	assert.Contains(t, res.Error, classifier.ErrImageTooLarge.Error())
	assert.Empty(t, res.Label)
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, result{File: "dog.jpg", Label: "dog", Confidence: 0.9123}, false)
	assert.Equal(t, "dog.jpg\tdog\t91.23%\n", buf.String())

	buf.Reset()
	printResult(&buf, result{File: "dog.jpg", Label: "dog", Confidence: 0.9, RawScore: 0.9}, true)
	assert.JSONEq(t, `{"file":"dog.jpg","label":"dog","confidence":0.9,"rawScore":0.9}`, buf.String())

	// A raw score of exactly 0 is a certain cat and must still be printed.
	buf.Reset()
	printResult(&buf, result{File: "cat.jpg", Label: "cat", Confidence: 1, RawScore: 0}, true)
	assert.JSONEq(t, `{"file":"cat.jpg","label":"cat","confidence":1,"rawScore":0}`, buf.String())
}
