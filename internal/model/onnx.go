package model

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXClassifier wraps an ONNX Runtime session over a pre-trained
// classifier. The session reuses its input/output tensors between runs, so
// a mutex serializes inference; the loaded artifact itself is never mutated.
type ONNXClassifier struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	metadata     Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

func NewONNXClassifier(modelPath, metadataPath string) (*ONNXClassifier, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	metadata, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	inputShape := ort.NewShape(metadata.InputShape...)
	outputShape := ort.NewShape(metadata.OutputShape...)

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{metadata.InputName}, []string{metadata.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXClassifier{
		session:      session,
		metadata:     metadata,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// Predict returns the index of the most probable class for the given
// feature vector. On an exact probability tie the lowest index wins.
func (c *ONNXClassifier) Predict(features []float32) (int, error) {
	probabilities, err := c.run(features)
	if err != nil {
		return 0, err
	}
	return argmax(probabilities), nil
}

// PredictProbability returns the per-class probability vector, ordered by
// class index.
func (c *ONNXClassifier) PredictProbability(features []float32) ([]float32, error) {
	return c.run(features)
}

func (c *ONNXClassifier) Classes() []string {
	return c.metadata.Classes
}

func (c *ONNXClassifier) run(features []float32) ([]float32, error) {
	if len(features) != c.metadata.FeatureCount() {
		return nil, fmt.Errorf("expected %d features, got %d", c.metadata.FeatureCount(), len(features))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	copy(c.inputTensor.GetData(), features)

	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	outputData := c.outputTensor.GetData()
	probabilities := make([]float32, len(c.metadata.Classes))
	copy(probabilities, outputData)

	return probabilities, nil
}

func (c *ONNXClassifier) Close() {
	if c.inputTensor != nil {
		c.inputTensor.Destroy()
	}
	if c.outputTensor != nil {
		c.outputTensor.Destroy()
	}
	if c.session != nil {
		c.session.Destroy()
	}
	ort.DestroyEnvironment()
}

func argmax(values []float32) int {
	maxIdx := 0
	for i, val := range values {
		if val > values[maxIdx] {
			maxIdx = i
		}
	}
	return maxIdx
}
