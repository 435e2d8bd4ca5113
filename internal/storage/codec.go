package storage

import (
	"encoding/json"

	"diecup/internal/model"
)

func encodeGenerations(records []model.GenerationRecord) ([]byte, error) {
	return json.Marshal(records)
}

func decodeGenerations(data []byte) ([]model.GenerationRecord, error) {
	var records []model.GenerationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func encodeBest(best model.BestSnapshot) ([]byte, error) {
	return json.Marshal(best)
}

func decodeBest(data []byte) (model.BestSnapshot, error) {
	var best model.BestSnapshot
	if err := json.Unmarshal(data, &best); err != nil {
		return model.BestSnapshot{}, err
	}
	return best, nil
}
