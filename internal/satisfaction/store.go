package satisfaction

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goodcabs/tripsense/internal/errors"
)

const (
	modelFileName  = "model.json"
	scalerFileName = "scaler.json"
)

// FileModelStore persists the (model, scaler) pair as two JSON files in a
// directory. Writes go to temp files first and are renamed into place so a
// concurrent reader never observes a half-written artifact.
type FileModelStore struct {
	dir string
}

// NewFileModelStore creates a file-backed model store rooted at dir.
func NewFileModelStore(dir string) *FileModelStore {
	return &FileModelStore{dir: dir}
}

// Load reads the persisted pair. Returns (nil, nil, nil) when no artifact
// exists. A half-present, undecodable, or dimensionally mismatched pair is a
// model-load error, never a silent misprediction.
func (s *FileModelStore) Load() (*TrainedModel, *FeatureScaler, error) {
	modelPath := filepath.Join(s.dir, modelFileName)
	scalerPath := filepath.Join(s.dir, scalerFileName)

	_, modelErr := os.Stat(modelPath)
	_, scalerErr := os.Stat(scalerPath)
	if os.IsNotExist(modelErr) && os.IsNotExist(scalerErr) {
		return nil, nil, nil
	}
	if os.IsNotExist(modelErr) || os.IsNotExist(scalerErr) {
		return nil, nil, errors.NewModelLoadError("persisted model/scaler pair is incomplete", nil)
	}

	var model TrainedModel
	if err := readJSON(modelPath, &model); err != nil {
		return nil, nil, errors.NewModelLoadError("failed to read persisted model", err)
	}
	var scaler FeatureScaler
	if err := readJSON(scalerPath, &scaler); err != nil {
		return nil, nil, errors.NewModelLoadError("failed to read persisted scaler", err)
	}

	if err := validatePair(&model, &scaler); err != nil {
		return nil, nil, err
	}

	return &model, &scaler, nil
}

// Save overwrites the persisted pair. The previous artifact stays untouched
// if either marshal or temp write fails.
func (s *FileModelStore) Save(model *TrainedModel, scaler *FeatureScaler) error {
	if err := validatePair(model, scaler); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	modelTmp, err := writeJSONTemp(s.dir, modelFileName, model)
	if err != nil {
		return err
	}
	scalerTmp, err := writeJSONTemp(s.dir, scalerFileName, scaler)
	if err != nil {
		os.Remove(modelTmp)
		return err
	}

	if err := os.Rename(modelTmp, filepath.Join(s.dir, modelFileName)); err != nil {
		os.Remove(scalerTmp)
		return fmt.Errorf("failed to install model artifact: %w", err)
	}
	if err := os.Rename(scalerTmp, filepath.Join(s.dir, scalerFileName)); err != nil {
		return fmt.Errorf("failed to install scaler artifact: %w", err)
	}
	return nil
}

// validatePair enforces the fixed feature count and the matched-pair
// invariant between model coefficients and scaler dimensions.
func validatePair(model *TrainedModel, scaler *FeatureScaler) error {
	if len(model.Coefficients) != FeatureCount {
		return errors.NewModelLoadError(
			fmt.Sprintf("model has %d coefficients, expected %d", len(model.Coefficients), FeatureCount), nil)
	}
	if len(scaler.Mean) != len(model.Coefficients) || len(scaler.Std) != len(model.Coefficients) {
		return errors.NewModelLoadError(
			fmt.Sprintf("scaler dimensions (%d mean, %d std) do not match model coefficient count %d",
				len(scaler.Mean), len(scaler.Std), len(model.Coefficients)), nil)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(v)
}

func writeJSONTemp(dir, name string, v interface{}) (string, error) {
	f, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp artifact: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to encode artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	return f.Name(), nil
}
