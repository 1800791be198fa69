package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/restaurant-hub/product-bulk/domain/product"
	"github.com/restaurant-hub/product-bulk/mocks"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeArchive struct {
	objects map[string][]*product.AuditRecord
}

func (f *fakeArchive) List(_ context.Context, _ time.Time) ([]string, error) {
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys, nil
}

func (f *fakeArchive) Load(_ context.Context, key string) ([]*product.AuditRecord, error) {
	records, ok := f.objects[key]
	if !ok {
		return nil, assert.AnError
	}
	return records, nil
}

func newTestCommand(out *strings.Builder) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetContext(context.Background())
	return cmd
}

func TestReplay(t *testing.T) {
	store := &fakeArchive{objects: map[string][]*product.AuditRecord{
		"bulk/2026/03/14/092653-a.ndjson": {
			{BatchID: "batch-1", Operation: product.OperationDelete},
			{BatchID: "batch-2", Operation: product.OperationActivate},
		},
		"bulk/2026/03/14/101500-b.ndjson": {
			{BatchID: "batch-3", Operation: product.OperationDeactivate},
		},
	}}
	keys := []string{"bulk/2026/03/14/092653-a.ndjson", "bulk/2026/03/14/101500-b.ndjson"}

	t.Run("publishes every record", func(t *testing.T) {
		publisher := new(mocks.MockAuditPublisher)
		publisher.On("Publish", mock.Anything, mock.AnythingOfType("*product.AuditRecord")).Return(nil)

		out := new(strings.Builder)
		require.NoError(t, replay(newTestCommand(out), store, publisher, keys))

		publisher.AssertNumberOfCalls(t, "Publish", 3)
		assert.Contains(t, out.String(), "replayed 3 record(s)")
	})

	t.Run("dry run publishes nothing", func(t *testing.T) {
		out := new(strings.Builder)
		require.NoError(t, replay(newTestCommand(out), store, nil, keys))
		assert.Contains(t, out.String(), "found 3 record(s)")
	})

	t.Run("publish error stops replay", func(t *testing.T) {
		publisher := new(mocks.MockAuditPublisher)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(assert.AnError)

		err := replay(newTestCommand(new(strings.Builder)), store, publisher, keys[:1])
		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "batch-1")
		publisher.AssertNumberOfCalls(t, "Publish", 1)
	})

	t.Run("missing object", func(t *testing.T) {
		err := replay(newTestCommand(new(strings.Builder)), store, nil, []string{"missing"})
		require.Error(t, err)
	})
}

func TestParseDay(t *testing.T) {
	day, err := parseDay("2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), day)

	_, err = parseDay("14/03/2026")
	require.Error(t, err)

	today, err := parseDay("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, today.Location())
}
