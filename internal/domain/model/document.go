package model

import (
	"encoding/json"
	"fmt"
)

// document is the stored shape of a report: the evaluation plus its creation
// time. The id lives outside the document (row key or hash field).
type document struct {
	Evaluation
	CreationTimestamp int64 `json:"creationTimestamp,omitempty"`
}

// EncodeDocument serialises an evaluation for storage.
func EncodeDocument(e Evaluation, createdAt int64) ([]byte, error) {
	data, err := json.Marshal(document{Evaluation: e.Clone(), CreationTimestamp: createdAt})
	if err != nil {
		return nil, fmt.Errorf("encode report document: %w", err)
	}
	return data, nil
}

// DecodeDocument rebuilds a report from its stored form.
func DecodeDocument(id string, data []byte) (Report, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Report{}, fmt.Errorf("decode report %s: %w", id, err)
	}
	return Report{ID: id, Evaluation: doc.Evaluation.Clone(), CreatedAt: doc.CreationTimestamp}, nil
}
