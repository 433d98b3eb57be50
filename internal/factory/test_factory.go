package factory

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	collabmem "github.com/mcoot/petbattle/internal/collaborators/memory"
	"github.com/mcoot/petbattle/internal/dependencies/mocks"
	"github.com/mcoot/petbattle/internal/model"
	"github.com/mcoot/petbattle/internal/services/auth"
	"github.com/mcoot/petbattle/internal/storage/memory"
	"github.com/mcoot/petbattle/internal/testutil"
)

// Test addresses used by NewTestApp
const (
	TestProgramID = "battle-1"
	TestStoreID   = "store-1"

	// TestSecret is the secret every test address is claimed with
	TestSecret = "test-secret"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom

	// Registry answers owner and attribute lookups in-process
	Registry *collabmem.Registry
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The registry also backs the devnet routes.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	registry := collabmem.New()

	app := newWithDependencies(
		TestProgramID, TestStoreID,
		store, mockClock, mockRandom, registry, registry,
		time.Second, TestAuthConfig(), testutil.NopLogger(),
	)
	app.Devnet = registry

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Registry:   registry,
	}
}

// AddPets registers pet-1 owned by alice and pet-2 owned by bob
func (t *TestApp) AddPets() {
	t.Registry.SetEntity("pet-1", "alice")
	t.Registry.SetEntity("pet-2", "bob")
}

// QueueBattleStart queues the draws for two registrations and the opening
// turn: pet-1 gets power 6000, energy 9000 facing LEFT; pet-2 gets power
// 5000, energy 12000 facing RIGHT; pet-1 moves first.
func (t *TestApp) QueueBattleStart() {
	t.MockRandom.QueueRoll(4000, 9000, 0)
	t.MockRandom.QueueRoll(5000, 12000, 1)
	t.MockRandom.QueueCoin(0)
}

// TestAuthConfig returns an auth config with the cheapest bcrypt cost
func TestAuthConfig() auth.Config {
	cfg := auth.DefaultConfig()
	cfg.HashCost = bcrypt.MinCost
	return cfg
}

// SessionFor claims address with TestSecret and returns the session token
func (t *TestApp) SessionFor(address model.ActorID) string {
	session, err := t.Auth.Claim(context.Background(), address, TestSecret)
	if err != nil {
		panic("claim " + address.String() + ": " + err.Error())
	}
	return session.Token
}
