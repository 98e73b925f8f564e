package storage

import (
	"context"
	"errors"
)

// ErrMockStorage is returned by failingStore for every operation.
var ErrMockStorage = errors.New("mock storage error")

// failingStore implements Store and fails every call, simulating a durable
// store that is down.
type failingStore struct {
	Calls int
}

func (f *failingStore) AppendTurn(ctx context.Context, conversationID, role, content string) error {
	f.Calls++
	return ErrMockStorage
}

func (f *failingStore) RecentTurns(ctx context.Context, conversationID string, limit int) ([]Turn, error) {
	f.Calls++
	return nil, ErrMockStorage
}

func (f *failingStore) AppendUsage(ctx context.Context, rec UsageRecord) error {
	f.Calls++
	return ErrMockStorage
}

func (f *failingStore) UsageRecords(ctx context.Context) ([]UsageRecord, error) {
	f.Calls++
	return nil, ErrMockStorage
}

func (f *failingStore) AppendScan(ctx context.Context, rec ScanRecord) error {
	f.Calls++
	return ErrMockStorage
}

func (f *failingStore) ScanHistory(ctx context.Context, limit int) ([]ScanRecord, error) {
	f.Calls++
	return nil, ErrMockStorage
}

func (f *failingStore) SaveAlert(ctx context.Context, rec AlertRecord) error {
	f.Calls++
	return ErrMockStorage
}

func (f *failingStore) ListAlerts(ctx context.Context, unresolvedOnly bool) ([]AlertRecord, error) {
	f.Calls++
	return nil, ErrMockStorage
}

func (f *failingStore) ResolveAlert(ctx context.Context, id, resolution string) error {
	f.Calls++
	return ErrMockStorage
}

func (f *failingStore) Close() error { return nil }
