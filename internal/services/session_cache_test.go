package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCachePut(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewSessionCache(db, 10*time.Minute)

	mock.Regexp().ExpectSet("checkout:session:ref1", `.*"state":"POLLING".*`, 10*time.Minute).SetVal("OK")

	err := cache.Put(context.Background(), &CheckoutSession{
		Reference: "ref1",
		Identity:  "user:a",
		State:     StatePolling,
		Total:     decimal.NewFromInt(50000),
	})
	assert.NoError(t, err)
}

func TestSessionCacheGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewSessionCache(db, 10*time.Minute)

	stored := &CheckoutSession{
		Reference: "ref1",
		Identity:  "user:a",
		State:     StateApproved,
		Total:     decimal.NewFromInt(50000),
		UpdatedAt: time.Now().Truncate(time.Second),
	}
	data, err := json.Marshal(stored)
	require.NoError(t, err)

	mock.ExpectGet("checkout:session:ref1").SetVal(string(data))

	got, err := cache.Get(context.Background(), "ref1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, StateApproved, got.State)
	assert.True(t, got.Total.Equal(stored.Total))
}

func TestSessionCacheGetMissing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewSessionCache(db, 10*time.Minute)

	mock.ExpectGet("checkout:session:gone").RedisNil()

	got, err := cache.Get(context.Background(), "gone")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionCacheDelete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewSessionCache(db, 10*time.Minute)

	mock.ExpectDel("checkout:session:ref1").SetVal(1)
	assert.NoError(t, cache.Delete(context.Background(), "ref1"))
}
