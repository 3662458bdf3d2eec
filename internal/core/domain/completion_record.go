package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidRecord = errors.New("invalid completion record")
	ErrInvalidItemID = errors.New("invalid item id")
)

// GuestUserID is the identity of a session without an authenticated user.
const GuestUserID = ""

// CompletionRecord is the persisted state of one feature tracker: the items a
// user completed on a single calendar day.
type CompletionRecord struct {
	UserID string   `json:"userId"`
	Date   string   `json:"date"`
	IDs    []string `json:"ids"`
}

// ValidateItemID accepts ids that fit in one path segment of the reward
// endpoint: not blank, no separators, not a dot segment.
func ValidateItemID(itemID string) error {
	if strings.TrimSpace(itemID) == "" {
		return ErrInvalidItemID
	}
	if itemID == "." || itemID == ".." || strings.ContainsAny(itemID, "/\\") {
		return fmt.Errorf("%w: %q", ErrInvalidItemID, itemID)
	}
	return nil
}

func NewCompletionRecord(userID, date string, ids []string) *CompletionRecord {
	return &CompletionRecord{
		UserID: userID,
		Date:   date,
		IDs:    normalizeIDs(ids),
	}
}

func normalizeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	sort.Strings(unique)
	return unique
}

func (r *CompletionRecord) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidRecord)
	}
	if !IsValidDay(r.Date) {
		return fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrInvalidRecord, r.Date)
	}
	if r.IDs == nil {
		return fmt.Errorf("%w: ids are required", ErrInvalidRecord)
	}
	for _, id := range r.IDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: %v", ErrInvalidRecord, ErrInvalidItemID)
		}
	}
	return nil
}

// MatchesSession reports whether the record may be read by userID on today.
// Guest sessions never match: guests do not persist records.
func (r *CompletionRecord) MatchesSession(userID, today string) bool {
	if userID == GuestUserID {
		return false
	}
	return r.UserID == userID && r.Date == today
}

func (r *CompletionRecord) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("completion record: encode failed: %w", err)
	}
	return string(data), nil
}

// DecodeCompletionRecord parses and validates a stored record. Partially valid
// records are rejected as a whole.
func DecodeCompletionRecord(raw string) (*CompletionRecord, error) {
	var record CompletionRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	record.IDs = normalizeIDs(record.IDs)
	return &record, nil
}
