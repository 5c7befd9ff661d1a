package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Metadata describes the serialized model artifact: tensor shapes, the
// graph's input/output names, and the ordered class list. The class order
// matches the model's internal class index order.
type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	InputName   string   `json:"input_name"`
	OutputName  string   `json:"output_name"`
	Classes     []string `json:"classes"`
}

func LoadMetadata(path string) (Metadata, error) {
	var metadata Metadata

	data, err := os.ReadFile(path)
	if err != nil {
		return metadata, fmt.Errorf("failed to read metadata: %w", err)
	}

	if err := json.Unmarshal(data, &metadata); err != nil {
		return metadata, fmt.Errorf("failed to parse metadata: %w", err)
	}

	if metadata.InputName == "" {
		metadata.InputName = "input"
	}
	if metadata.OutputName == "" {
		metadata.OutputName = "output"
	}

	if err := metadata.Validate(); err != nil {
		return metadata, err
	}

	return metadata, nil
}

func (m Metadata) Validate() error {
	if len(m.InputShape) == 0 {
		return fmt.Errorf("metadata input_shape must not be empty")
	}
	if len(m.OutputShape) == 0 {
		return fmt.Errorf("metadata output_shape must not be empty")
	}
	if len(m.Classes) == 0 {
		return fmt.Errorf("metadata classes must not be empty")
	}
	if got := m.OutputShape[len(m.OutputShape)-1]; got != int64(len(m.Classes)) {
		return fmt.Errorf("metadata output_shape last dimension is %d but %d classes declared", got, len(m.Classes))
	}
	return nil
}

// FeatureCount is the flattened size of one model input.
func (m Metadata) FeatureCount() int {
	count := 1
	for _, dim := range m.InputShape {
		count *= int(dim)
	}
	return count
}
