package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompletionRecord(t *testing.T) {
	record := NewCompletionRecord("u1", "2025-01-01", []string{"tip-2", "tip-1", "tip-2"})

	t.Run("Should deduplicate and sort ids", func(t *testing.T) {
		assert.Equal(t, []string{"tip-1", "tip-2"}, record.IDs)
	})

	t.Run("Should never hold a nil id slice", func(t *testing.T) {
		empty := NewCompletionRecord("u1", "2025-01-01", nil)
		assert.NotNil(t, empty.IDs)
		assert.Empty(t, empty.IDs)
	})
}

func TestCompletionRecord_Validate(t *testing.T) {
	tests := []struct {
		name        string
		record      *CompletionRecord
		shouldError bool
	}{
		{
			name:   "Valid Record",
			record: &CompletionRecord{UserID: "u1", Date: "2025-01-01", IDs: []string{"tip-1"}},
		},
		{
			name:   "Valid Empty Ids",
			record: &CompletionRecord{UserID: "u1", Date: "2025-01-01", IDs: []string{}},
		},
		{
			name:        "Missing UserID",
			record:      &CompletionRecord{UserID: "", Date: "2025-01-01", IDs: []string{}},
			shouldError: true,
		},
		{
			name:        "Whitespace UserID",
			record:      &CompletionRecord{UserID: "  ", Date: "2025-01-01", IDs: []string{}},
			shouldError: true,
		},
		{
			name:        "Bad Date Format",
			record:      &CompletionRecord{UserID: "u1", Date: "01/01/2025", IDs: []string{}},
			shouldError: true,
		},
		{
			name:        "Impossible Date",
			record:      &CompletionRecord{UserID: "u1", Date: "2025-02-30", IDs: []string{}},
			shouldError: true,
		},
		{
			name:        "Missing Ids",
			record:      &CompletionRecord{UserID: "u1", Date: "2025-01-01"},
			shouldError: true,
		},
		{
			name:        "Blank Id",
			record:      &CompletionRecord{UserID: "u1", Date: "2025-01-01", IDs: []string{"tip-1", " "}},
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.shouldError {
				assert.ErrorIs(t, err, ErrInvalidRecord)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompletionRecord_MatchesSession(t *testing.T) {
	record := &CompletionRecord{UserID: "u1", Date: "2025-01-01", IDs: []string{"tip-1"}}

	assert.True(t, record.MatchesSession("u1", "2025-01-01"))
	assert.False(t, record.MatchesSession("u1", "2025-01-02"), "another day is stale")
	assert.False(t, record.MatchesSession("u2", "2025-01-01"), "another user is stale")
	assert.False(t, record.MatchesSession(GuestUserID, "2025-01-01"), "guest never matches")
}

func TestDecodeCompletionRecord(t *testing.T) {
	t.Run("Success: Should decode wire format", func(t *testing.T) {
		record, err := DecodeCompletionRecord(`{"userId":"u1","date":"2025-01-01","ids":["tip-1","tip-1","a"]}`)
		require.NoError(t, err)
		assert.Equal(t, "u1", record.UserID)
		assert.Equal(t, "2025-01-01", record.Date)
		assert.Equal(t, []string{"a", "tip-1"}, record.IDs)
	})

	t.Run("Fail: Malformed JSON", func(t *testing.T) {
		_, err := DecodeCompletionRecord("not-json{")
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("Fail: Wrong field types", func(t *testing.T) {
		_, err := DecodeCompletionRecord(`{"userId":42,"date":"2025-01-01","ids":[]}`)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("Fail: Partially valid record is rejected whole", func(t *testing.T) {
		_, err := DecodeCompletionRecord(`{"userId":"u1","date":"yesterday","ids":["tip-1"]}`)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("Round trip through Encode", func(t *testing.T) {
		raw, err := NewCompletionRecord("u1", "2025-01-01", []string{"quiz-1"}).Encode()
		require.NoError(t, err)
		assert.JSONEq(t, `{"userId":"u1","date":"2025-01-01","ids":["quiz-1"]}`, raw)
	})
}

func TestValidateItemID(t *testing.T) {
	valid := []string{"tip-1", "quiz 7", "a.b", "..a", "%2F"}
	for _, id := range valid {
		assert.NoError(t, ValidateItemID(id), id)
	}

	invalid := []string{"", "  ", ".", "..", "a/b", "../../admin/reset", `a\b`}
	for _, id := range invalid {
		assert.ErrorIs(t, ValidateItemID(id), ErrInvalidItemID, id)
	}
}
