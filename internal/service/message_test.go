package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/model"
)

func TestSendRejectsEmptyBody(t *testing.T) {
	svc := &MessageService{}

	_, err := svc.Send(context.Background(), model.CreateMessageParams{
		SenderID:   1,
		TargetType: model.TargetUser,
		TargetID:   2,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "Die Nachricht darf nicht leer sein.")
}

func TestSendRejectsInvalidTarget(t *testing.T) {
	svc := &MessageService{}

	_, err := svc.Send(context.Background(), model.CreateMessageParams{
		SenderID:   1,
		Body:       "Hallo",
		TargetType: model.MessageTarget("galaxy"),
		TargetID:   2,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ungültiger Empfängertyp.")
}

func TestMentionRegex(t *testing.T) {
	tests := []struct {
		body string
		want []string
	}{
		{"Hallo @maxmuster, bitte melden!", []string{"maxmuster"}},
		{"@anna.b und @jo-k sind dabei", []string{"anna.b", "jo-k"}},
		{"kein treffer: mail@ab", nil},
		{"@ab zu kurz", nil},
	}

	for _, tt := range tests {
		matches := mentionRegex.FindAllStringSubmatch(tt.body, -1)
		var got []string
		for _, m := range matches {
			got = append(got, m[1])
		}
		assert.Equal(t, tt.want, got, tt.body)
	}
}

func TestDedupeExcluding(t *testing.T) {
	got := dedupeExcluding([]int64{3, 1, 2, 3, 1, 5}, 2)
	assert.Equal(t, []int64{1, 3, 5}, got)

	got = dedupeExcluding([]int64{7, 7, 7}, 7)
	assert.Empty(t, got)

	got = dedupeExcluding(nil, 1)
	assert.Empty(t, got)
}
