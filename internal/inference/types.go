package inference

// Measurement is one validated set of iris flower measurements in
// centimeters.
type Measurement struct {
	SepalLength float64 `json:"sepal_length"`
	SepalWidth  float64 `json:"sepal_width"`
	PetalLength float64 `json:"petal_length"`
	PetalWidth  float64 `json:"petal_width"`
}

// Features flattens the measurement into the fixed order the model was
// trained on: sepal length, sepal width, petal length, petal width.
func (m Measurement) Features() []float32 {
	return []float32{
		float32(m.SepalLength),
		float32(m.SepalWidth),
		float32(m.PetalLength),
		float32(m.PetalWidth),
	}
}

// Prediction is the result of scoring one measurement: the predicted
// species, its probability, and the full per-class probability mapping.
type Prediction struct {
	Species       string             `json:"species"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
}
