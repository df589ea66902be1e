package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookups(t *testing.T) {
	cases := []struct {
		code  int
		label string
		class string
	}{
		{1, "Pending", "bg-warning"},
		{2, "Inprogress", "bg-primary"},
		{3, "Complete Request sent to User", "bg-success"},
		{4, "Accepted", "bg-success"},
		{5, "Rejected by User", "bg-danger"},
		{6, "Completed Accepted", "bg-success"},
		{7, "Cancelled by Provider", "bg-danger"},
	}
	for _, tc := range cases {
		label, err := Label(tc.code)
		require.NoError(t, err)
		assert.Equal(t, tc.label, label)

		class, err := PresentationClass(tc.code)
		require.NoError(t, err)
		assert.Equal(t, tc.class, class)
	}
}

func TestRegistryRejectsUnknownCodes(t *testing.T) {
	for _, code := range []int{0, -1, 8, 100} {
		_, err := Label(code)
		assert.ErrorIs(t, err, ErrUnknownStatus)
		_, err = PresentationClass(code)
		assert.ErrorIs(t, err, ErrUnknownStatus)
		_, err = ParseStatus(code)
		assert.ErrorIs(t, err, ErrUnknownStatus)
	}
}

func TestTerminalAndReasonStatuses(t *testing.T) {
	for s := StatusPending; s <= StatusCancelledByProvider; s++ {
		terminal := s == StatusRejectedByUser || s == StatusCompletedAccepted || s == StatusCancelledByProvider
		assert.Equal(t, terminal, s.IsTerminal(), s.Name())
		assert.Equal(t, s == StatusRejectedByUser || s == StatusCancelledByProvider, s.RequiresReason(), s.Name())
	}
}

func TestFilterableStatuses(t *testing.T) {
	assert.Equal(t, []Status{1, 2, 3, 5, 7, 6}, FilterableStatuses())
	assert.NotContains(t, FilterableStatuses(), StatusAccepted)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = ParseFilter("2")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, StatusInProgress, *f)

	_, err = ParseFilter("4")
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = ParseFilter("9")
	assert.ErrorIs(t, err, ErrUnknownStatus)

	_, err = ParseFilter("pending")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestStatusesOrderedByCode(t *testing.T) {
	entries := Statuses()
	require.Len(t, entries, 7)
	for i, e := range entries {
		assert.Equal(t, Status(i+1), e.Code)
	}
	assert.False(t, entries[3].Filterable)
	assert.Equal(t, "Unknown(9)", Status(9).Name())
}
