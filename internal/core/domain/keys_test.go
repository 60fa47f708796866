package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKey_Name(t *testing.T) {
	key := SessionKey{
		Username:  "alice",
		SessionID: "sess-9",
		Year:      "2024",
		Semester:  "1",
		Subject:   "circuits",
	}

	assert.Equal(t, "alice_2024_1_circuits_sess-9", key.Name())
}

func TestSessionKey_Validate(t *testing.T) {
	valid := SessionKey{
		Username:  "alice",
		SessionID: "s1",
		Year:      "2024",
		Semester:  "1",
		Subject:   "circuits",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*SessionKey)
	}{
		{"missing username", func(k *SessionKey) { k.Username = "" }},
		{"missing session id", func(k *SessionKey) { k.SessionID = "" }},
		{"missing year", func(k *SessionKey) { k.Year = "" }},
		{"missing semester", func(k *SessionKey) { k.Semester = "" }},
		{"missing subject", func(k *SessionKey) { k.Subject = "" }},
		{"whitespace only", func(k *SessionKey) { k.Subject = "   " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := valid
			tt.mutate(&key)

			err := key.Validate()

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestIndexKey_Name(t *testing.T) {
	key := IndexKey{Subject: "circuits", Year: "2024", Semester: "1"}

	assert.Equal(t, "circuits_2024_1", key.Name())
}

func TestIndexKey_Validate(t *testing.T) {
	require.NoError(t, IndexKey{Subject: "circuits", Year: "2024", Semester: "1"}.Validate())

	assert.ErrorIs(t, IndexKey{Year: "2024", Semester: "1"}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, IndexKey{Subject: "circuits", Semester: "1"}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, IndexKey{Subject: "circuits", Year: "2024"}.Validate(), ErrInvalidInput)
}

func TestRole_Label(t *testing.T) {
	assert.Equal(t, "USER", RoleUser.Label())
	assert.Equal(t, "ASSISTANT", RoleAssistant.Label())
}

func TestAskRequest_Keys(t *testing.T) {
	req := AskRequest{
		Username:  "alice",
		Question:  "what is emf",
		SessionID: "s1",
		Year:      "2024",
		Semester:  "2",
		Subject:   "circuits",
	}

	assert.Equal(t, "alice_2024_2_circuits_s1", req.Key().Name())
	assert.Equal(t, "circuits_2024_2", req.IndexKey().Name())
}

func TestAskRequest_Validate(t *testing.T) {
	valid := AskRequest{
		Username:  "alice",
		Question:  "what is emf",
		SessionID: "s1",
		Year:      "2024",
		Semester:  "2",
		Subject:   "circuits",
	}
	require.NoError(t, valid.Validate())

	empty := valid
	empty.Question = ""
	assert.ErrorIs(t, empty.Validate(), ErrInvalidInput)

	noScope := valid
	noScope.Subject = ""
	assert.ErrorIs(t, noScope.Validate(), ErrInvalidInput)
}

func TestSettings_Validate(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())

	topTooHigh := DefaultSettings()
	topTooHigh.Retrieval.TopAfterRerank = topTooHigh.Retrieval.KInitial + 1
	assert.ErrorIs(t, topTooHigh.Validate(), ErrInvalidInput)

	noModel := DefaultSettings()
	noModel.Generation.Model = ""
	assert.ErrorIs(t, noModel.Validate(), ErrInvalidInput)

	zeroBudget := DefaultSettings()
	zeroBudget.Limits.BriefMaxOutputTokens = 0
	assert.ErrorIs(t, zeroBudget.Validate(), ErrInvalidInput)

	zeroRetention := DefaultSettings()
	zeroRetention.Memory.Retention = 0
	assert.ErrorIs(t, zeroRetention.Validate(), ErrInvalidInput)

	badProvider := DefaultSettings()
	badProvider.Generation.Provider = "aws"
	assert.ErrorIs(t, badProvider.Validate(), ErrInvalidInput)

	anthropicEmbed := DefaultSettings()
	anthropicEmbed.Embedding.Provider = AIProviderAnthropic
	err := anthropicEmbed.Validate()
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "embeddings")
}
