package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"catdog/internal/config"
	"catdog/internal/logger"
	"catdog/internal/service/ai"
	"catdog/internal/service/classifier"
	"catdog/internal/service/modelstore"
)

// result is one line of output.
type result struct {
	File       string  `json:"file"`
	Label      string  `json:"label,omitempty"`
	Confidence float64 `json:"confidence"`
	RawScore   float64 `json:"rawScore"`
	Error      string  `json:"error,omitempty"`
}

func main() {
	cfg := config.Load()

	modelPath := flag.String("model", cfg.ModelPath, "Model file path")
	modelURL := flag.String("url", cfg.ModelURL, "URL to download the model from when the file is missing")
	backend := flag.String("backend", cfg.ModelBackend, "Inference backend: onnx or opencv")
	onnxLib := flag.String("onnx-lib", cfg.ONNXLibraryPath, "Path to the onnxruntime shared library")
	maxPixels := flag.Int64("max-pixels", cfg.MaxImagePixels, "Skip images larger than this many pixels")
	asJSON := flag.Bool("json", false, "Print one JSON object per image")
	verbose := flag.Bool("v", false, "Log model loading to stderr")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <image|directory>...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	files, err := collectImages(flag.Args())
	if err != nil {
		log.Fatalf("Failed to list images: %v", err)
	}
	if len(files) == 0 {
		fmt.Println("No images found")
		return
	}

	logOut := io.Discard
	if *verbose {
		logOut = os.Stderr
	}
	lg := logger.NewWriterLogger(logOut)

	store := modelstore.New(*modelPath, *modelURL, time.Duration(cfg.ModelDownloadTimeout)*time.Second, lg)
	path, err := store.Ensure(context.Background())
	if err != nil {
		log.Fatalf("Model not available: %v", err)
	}

	cfg.ModelBackend = *backend
	cfg.ONNXLibraryPath = *onnxLib
	model, err := ai.NewModel(cfg, path, lg)
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}
	defer model.Close()

	failed := 0
	for _, file := range files {
		res := classifyFile(file, model, *maxPixels)
		if res.Error != "" {
			failed++
		}
		printResult(os.Stdout, res, *asJSON)
	}

	if failed > 0 {
		model.Close()
		os.Exit(1)
	}
}

// collectImages expands directories into the .jpg/.jpeg/.png files they contain.
// Explicit file arguments are kept as given.
func collectImages(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, entry := range entries {
			if entry.IsDir() || !isImage(entry.Name()) {
				continue
			}
			found = append(found, filepath.Join(arg, entry.Name()))
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

func classifyFile(path string, model classifier.Model, maxPixels int64) result {
	res := result{File: path}

	f, err := os.Open(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer f.Close()

	img, _, err := classifier.Decode(f, maxPixels)
	if err != nil {
		res.Error = "invalid image: " + err.Error()
		return res
	}

	pred, err := classifier.ClassifyImage(img, model)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Label = pred.Label
	res.Confidence = pred.Confidence
	res.RawScore = pred.RawScore
	return res
}

func printResult(w io.Writer, res result, asJSON bool) {
	if asJSON {
		json.NewEncoder(w).Encode(res)
		return
	}
	if res.Error != "" {
		fmt.Fprintf(w, "%s\t⚠️  %s\n", res.File, res.Error)
		return
	}
	fmt.Fprintf(w, "%s\t%s\t%.2f%%\n", res.File, res.Label, res.Confidence*100)
}
