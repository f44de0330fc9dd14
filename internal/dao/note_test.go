package dao

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoteRoundTrip(t *testing.T) {
	recipient, err := GenerateKeypair()
	require.NoError(t, err)
	prop := testProposalParams(t)

	note, err := EncryptNote(prop, recipient.Pk)
	require.NoError(t, err)

	got, err := DecryptNote(note, recipient)
	require.NoError(t, err)
	require.Equal(t, prop.Amount, got.Amount)
	require.Zero(t, prop.DestX.Cmp(got.DestX))
	require.Zero(t, prop.Serial.Cmp(got.Serial))
	require.Zero(t, prop.Blind.Cmp(got.Blind))
}

func TestNoteScanMatchesBulla(t *testing.T) {
	recipient, err := GenerateKeypair()
	require.NoError(t, err)
	prop := testProposalParams(t)
	daoBulla, err := testDaoParams(t).Bulla()
	require.NoError(t, err)
	propBulla, err := prop.Bulla(daoBulla)
	require.NoError(t, err)

	note, err := EncryptNote(prop, recipient.Pk)
	require.NoError(t, err)

	got, ok := TryDecryptNote(note, recipient, daoBulla, propBulla)
	require.True(t, ok)
	require.Equal(t, prop.Amount, got.Amount)

	// Wrong recipient key: the recovered fields cannot re-derive the bulla.
	stranger, err := GenerateKeypair()
	require.NoError(t, err)
	_, ok = TryDecryptNote(note, stranger, daoBulla, propBulla)
	require.False(t, ok)
}
