package journal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// RecordDecision hashes inputs and writes a decision record. Together with
// RecordMission it lets a Store act as the engine's recorder.
func (s *Store) RecordDecision(ctx context.Context, action string, inputs any, outcome, subjectID, details string) error {
	_, err := s.WriteDecision(ctx, action, HashInputs(inputs), outcome, subjectID, details)
	return err
}

// HashInputs returns the hex SHA-256 of the JSON encoding of inputs.
func HashInputs(inputs any) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
