package satisfaction

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodcabs/tripsense/internal/errors"
)

func validPair() (*TrainedModel, *FeatureScaler) {
	return &TrainedModel{
			Coefficients: []float64{0.1, 0.2, 0.3, 0.4},
			Intercept:    4.2,
		}, &FeatureScaler{
			Mean: []float64{10, 150, 4, 4.5},
			Std:  []float64{2, 30, 0.5, 0.4},
		}
}

func TestFileModelStoreRoundTrip(t *testing.T) {
	store := NewFileModelStore(t.TempDir())
	model, scaler := validPair()

	require.NoError(t, store.Save(model, scaler))

	loaded, loadedScaler, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.NotNil(t, loadedScaler)

	assert.Equal(t, model.Coefficients, loaded.Coefficients)
	assert.Equal(t, model.Intercept, loaded.Intercept)
	assert.Equal(t, scaler.Mean, loadedScaler.Mean)
	assert.Equal(t, scaler.Std, loadedScaler.Std)
}

func TestFileModelStoreLoadAbsent(t *testing.T) {
	store := NewFileModelStore(t.TempDir())

	model, scaler, err := store.Load()
	assert.NoError(t, err)
	assert.Nil(t, model)
	assert.Nil(t, scaler)
}

func TestFileModelStoreHalfPresentPair(t *testing.T) {
	dir := t.TempDir()
	store := NewFileModelStore(dir)
	model, scaler := validPair()
	require.NoError(t, store.Save(model, scaler))

	require.NoError(t, os.Remove(filepath.Join(dir, "scaler.json")))

	_, _, err := store.Load()
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryModelLoad))
}

func TestFileModelStoreCorruptArtifact(t *testing.T) {
	dir := t.TempDir()
	store := NewFileModelStore(dir)
	model, scaler := validPair()
	require.NoError(t, store.Save(model, scaler))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.json"), []byte("{not json"), 0o644))

	_, _, err := store.Load()
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryModelLoad))
}

func TestFileModelStoreDimensionMismatch(t *testing.T) {
	store := NewFileModelStore(t.TempDir())

	model := &TrainedModel{Coefficients: []float64{1, 2}}
	scaler := &FeatureScaler{Mean: []float64{0, 0}, Std: []float64{1, 1}}

	err := store.Save(model, scaler)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryModelLoad))
}

func TestFileModelStoreScalerMismatch(t *testing.T) {
	store := NewFileModelStore(t.TempDir())

	model, _ := validPair()
	scaler := &FeatureScaler{Mean: []float64{0}, Std: []float64{1}}

	err := store.Save(model, scaler)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryModelLoad))
}
