package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededRandomIsReproducible(t *testing.T) {
	a := NewSeeded([]byte("seed"))
	b := NewSeeded([]byte("seed"))

	for i := 0; i < 3; i++ {
		da, err := a.Derive([]byte("subject"))
		require.NoError(t, err)
		db, err := b.Derive([]byte("subject"))
		require.NoError(t, err)
		assert.Equal(t, da, db)
	}
}

func TestSeededRandomIsStateless(t *testing.T) {
	r := NewSeeded([]byte("seed"))

	first, err := r.Derive([]byte("subject#0"))
	require.NoError(t, err)
	again, err := r.Derive([]byte("subject#0"))
	require.NoError(t, err)
	next, err := r.Derive([]byte("subject#1"))
	require.NoError(t, err)

	// A fresh source continues where the stored nonce left off
	resumed, err := NewSeeded([]byte("seed")).Derive([]byte("subject#1"))
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.NotEqual(t, first, next)
	assert.Equal(t, next, resumed)
}

func TestSeededRandomDependsOnSubject(t *testing.T) {
	a := NewSeeded([]byte("seed"))
	b := NewSeeded([]byte("seed"))

	da, err := a.Derive([]byte("power"))
	require.NoError(t, err)
	db, err := b.Derive([]byte("turn"))
	require.NoError(t, err)

	assert.NotEqual(t, da, db)
}

func TestSeededRandomDependsOnSeed(t *testing.T) {
	da, err := NewSeeded([]byte("one")).Derive([]byte("subject"))
	require.NoError(t, err)
	db, err := NewSeeded([]byte("two")).Derive([]byte("subject"))
	require.NoError(t, err)

	assert.NotEqual(t, da, db)
}

func TestCryptoRandomProducesFreshDraws(t *testing.T) {
	r := New()

	first, err := r.Derive([]byte("subject"))
	require.NoError(t, err)
	second, err := r.Derive([]byte("subject"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
