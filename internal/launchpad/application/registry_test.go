package application

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/launchpad/internal/launchpad/domain"
	"github.com/wyfcoding/launchpad/internal/launchpad/infrastructure/persistence"
	"github.com/wyfcoding/launchpad/internal/launchpad/infrastructure/persistence/memory"
)

const (
	testOwner   = "platform:owner"
	testCreator = "alice"
	testBuyer   = "bob"
)

var testFee = decimal.RequireFromString("0.01")

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	Type  string
	Key   string
	Event any
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, Key: key, Event: event})
	return nil
}

func (p *recordingPublisher) byType(eventType string) []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []recordedEvent
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	service   *RegistryService
	store     *memory.Store
	publisher *recordingPublisher
}

func newTestEnv() *testEnv {
	store := memory.NewStore()
	publisher := &recordingPublisher{}

	command := NewRegistryCommandService(
		store.SaleRepository(),
		store.LedgerRepository(),
		store.TreasuryRepository(),
		store.UnitOfWork(),
		publisher,
		nil,
		testOwner,
		testFee,
		nil,
	)
	query := NewRegistryQueryService(store.SaleRepository(), store.LedgerRepository(), testOwner, testFee)

	return &testEnv{
		service:   NewRegistryService(command, query),
		store:     store,
		publisher: publisher,
	}
}

func (e *testEnv) createSale(t *testing.T) *SaleDTO {
	t.Helper()
	sale, err := e.service.CreateSale(context.Background(), CreateSaleCommand{
		Caller:  testCreator,
		Name:    "My Token",
		Symbol:  "MTK",
		Payment: testFee,
	})
	require.NoError(t, err)
	return sale
}

func (e *testEnv) treasuryBalance(t *testing.T) decimal.Decimal {
	t.Helper()
	treasury, err := e.store.TreasuryRepository().Get(context.Background())
	require.NoError(t, err)
	if treasury == nil {
		return decimal.Zero
	}
	return treasury.Balance
}

// TestCreateSale checks listing: fee collected, supply escrowed, record initialized.
func TestCreateSale(t *testing.T) {
	env := newTestEnv()
	sale := env.createSale(t)

	assert.Equal(t, testCreator, sale.Creator)
	assert.Equal(t, int64(0), sale.Index)
	assert.True(t, sale.Sold.IsZero())
	assert.True(t, sale.Raised.IsZero())
	assert.True(t, sale.IsOpen)

	assert.True(t, env.treasuryBalance(t).Equal(testFee), "treasury = %s", env.treasuryBalance(t))

	escrow, err := env.service.BalanceOf(context.Background(), sale.TokenID, domain.EscrowAccount)
	require.NoError(t, err)
	assert.True(t, escrow.Equal(domain.TotalSupply), "escrow = %s", escrow)

	events := env.publisher.byType(domain.EventTypeSaleCreated)
	require.Len(t, events, 1)
	assert.Equal(t, sale.TokenID, events[0].Key)
}

// TestCreateSaleWrongFee checks any non-exact fee leaves all state unchanged.
func TestCreateSaleWrongFee(t *testing.T) {
	env := newTestEnv()

	for _, payment := range []string{"0", "0.009", "0.011", "1"} {
		_, err := env.service.CreateSale(context.Background(), CreateSaleCommand{
			Caller:  testCreator,
			Name:    "My Token",
			Symbol:  "MTK",
			Payment: decimal.RequireFromString(payment),
		})
		assert.ErrorIs(t, err, domain.ErrWrongFee, "payment %s", payment)
	}

	count, err := env.service.TotalTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	assert.True(t, env.treasuryBalance(t).IsZero())
}

// TestCreateSaleEmptyMetadata checks name and symbol must be non-empty.
func TestCreateSaleEmptyMetadata(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.CreateSale(context.Background(), CreateSaleCommand{
		Caller:  testCreator,
		Name:    "  ",
		Symbol:  "MTK",
		Payment: testFee,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMetadata)
}

// TestBuy reproduces the reference purchase: 10,000 units at the base rate cost exactly 1.
func TestBuy(t *testing.T) {
	env := newTestEnv()
	created := env.createSale(t)
	ctx := context.Background()

	sale, err := env.service.Buy(ctx, BuyCommand{
		Caller:  testBuyer,
		TokenID: created.TokenID,
		Amount:  decimal.NewFromInt(10_000),
		Payment: decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	assert.True(t, sale.Sold.Equal(decimal.NewFromInt(10_000)))
	assert.True(t, sale.Raised.Equal(decimal.NewFromInt(1)))
	assert.True(t, sale.IsOpen)

	// Marginal price doubles after the first step.
	assert.True(t, sale.Cost.Equal(decimal.RequireFromString("0.0002")), "cost = %s", sale.Cost)

	balance, err := env.service.BalanceOf(ctx, created.TokenID, testBuyer)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(10_000)))

	// fee + purchase proceeds
	want := testFee.Add(decimal.NewFromInt(1))
	assert.True(t, env.treasuryBalance(t).Equal(want), "treasury = %s", env.treasuryBalance(t))
}

// TestBuyRejections checks every buy precondition fails atomically.
func TestBuyRejections(t *testing.T) {
	env := newTestEnv()
	created := env.createSale(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		tokenID string
		amount  decimal.Decimal
		payment decimal.Decimal
		wantErr error
	}{
		{"unknown token", "no-such-token", decimal.NewFromInt(1), decimal.RequireFromString("0.0001"), domain.ErrSaleNotFound},
		{"wrong payment", created.TokenID, decimal.NewFromInt(10_000), decimal.NewFromInt(2), domain.ErrWrongPayment},
		{"zero amount", created.TokenID, decimal.Zero, decimal.Zero, domain.ErrInvalidAmount},
		{"over limit", created.TokenID, domain.TokenLimit.Add(decimal.NewFromInt(1)), decimal.NewFromInt(51), domain.ErrExceedsLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.service.Buy(ctx, BuyCommand{
				Caller:  testBuyer,
				TokenID: tc.tokenID,
				Amount:  tc.amount,
				Payment: tc.payment,
			})
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	// Rejections must not leave partial state behind.
	sale, err := env.service.TokenToSale(ctx, created.TokenID)
	require.NoError(t, err)
	assert.True(t, sale.Sold.IsZero())
	assert.True(t, sale.Raised.IsZero())
	assert.True(t, env.treasuryBalance(t).Equal(testFee))
}

// TestBuyClosesSaleOnTarget walks the reference sequence to the target and checks
// the sale closes exactly once and rejects further buys.
func TestBuyClosesSaleOnTarget(t *testing.T) {
	env := newTestEnv()
	created := env.createSale(t)
	ctx := context.Background()
	amount := decimal.NewFromInt(10_000)

	_, err := env.service.Buy(ctx, BuyCommand{
		Caller: testBuyer, TokenID: created.TokenID,
		Amount: amount, Payment: decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	sale, err := env.service.Buy(ctx, BuyCommand{
		Caller: testBuyer, TokenID: created.TokenID,
		Amount: amount, Payment: decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	assert.False(t, sale.IsOpen)
	assert.True(t, sale.Raised.Equal(decimal.NewFromInt(3)))

	_, err = env.service.Buy(ctx, BuyCommand{
		Caller: testBuyer, TokenID: created.TokenID,
		Amount: amount, Payment: decimal.NewFromInt(3),
	})
	assert.ErrorIs(t, err, domain.ErrSaleClosed)

	events := env.publisher.byType(domain.EventTypeTokensPurchased)
	require.Len(t, events, 2)
	second, ok := events[1].Event.(domain.TokensPurchasedEvent)
	require.True(t, ok)
	assert.True(t, second.Closed)
}

// TestDeposit checks the creator claims exactly total supply minus sold after closing.
func TestDeposit(t *testing.T) {
	env := newTestEnv()
	created := env.createSale(t)
	ctx := context.Background()
	amount := decimal.NewFromInt(10_000)

	_, err := env.service.Buy(ctx, BuyCommand{
		Caller: testBuyer, TokenID: created.TokenID,
		Amount: amount, Payment: decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	// Deposit before closing must fail.
	_, err = env.service.Deposit(ctx, DepositCommand{Caller: testCreator, TokenID: created.TokenID})
	assert.ErrorIs(t, err, domain.ErrSaleStillOpen)

	_, err = env.service.Buy(ctx, BuyCommand{
		Caller: testBuyer, TokenID: created.TokenID,
		Amount: amount, Payment: decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	// Only the creator may deposit.
	_, err = env.service.Deposit(ctx, DepositCommand{Caller: testBuyer, TokenID: created.TokenID})
	assert.ErrorIs(t, err, domain.ErrNotCreator)

	sale, err := env.service.Deposit(ctx, DepositCommand{Caller: testCreator, TokenID: created.TokenID})
	require.NoError(t, err)
	assert.True(t, sale.Deposited)

	balance, err := env.service.BalanceOf(ctx, created.TokenID, testCreator)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(980_000)), "creator balance = %s", balance)

	escrow, err := env.service.BalanceOf(ctx, created.TokenID, domain.EscrowAccount)
	require.NoError(t, err)
	assert.True(t, escrow.IsZero())

	// A second deposit is an explicit error, not a silent no-op.
	_, err = env.service.Deposit(ctx, DepositCommand{Caller: testCreator, TokenID: created.TokenID})
	assert.ErrorIs(t, err, domain.ErrAlreadyDeposited)
}

// TestWithdraw checks owner-only withdrawal down to exactly zero.
func TestWithdraw(t *testing.T) {
	env := newTestEnv()
	env.createSale(t)
	ctx := context.Background()

	_, err := env.service.Withdraw(ctx, WithdrawCommand{Caller: testBuyer, Amount: testFee})
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	result, err := env.service.Withdraw(ctx, WithdrawCommand{Caller: testOwner, Amount: testFee})
	require.NoError(t, err)
	assert.True(t, result.Remaining.IsZero())

	_, err = env.service.Withdraw(ctx, WithdrawCommand{Caller: testOwner, Amount: testFee})
	assert.ErrorIs(t, err, domain.ErrInsufficientTreasury)
}

// TestQueries covers the read surface: counts, index and token lookups, listing, quotes.
func TestQueries(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first := env.createSale(t)
	second, err := env.service.CreateSale(ctx, CreateSaleCommand{
		Caller:  testCreator,
		Name:    "Other Token",
		Symbol:  "OTK",
		Payment: testFee,
	})
	require.NoError(t, err)

	count, err := env.service.TotalTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	byIndex, err := env.service.GetTokenSale(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, second.TokenID, byIndex.TokenID)

	_, err = env.service.GetTokenSale(ctx, 5)
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)

	byToken, err := env.service.TokenToSale(ctx, first.TokenID)
	require.NoError(t, err)
	assert.Equal(t, "My Token", byToken.Name)

	sales, err := env.service.ListSales(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, int64(0), sales[0].Index)
	assert.Equal(t, int64(1), sales[1].Index)

	quote, err := env.service.Quote(ctx, first.TokenID, decimal.NewFromInt(10_000))
	require.NoError(t, err)
	assert.True(t, quote.UnitPrice.Equal(decimal.RequireFromString("0.0001")))
	assert.True(t, quote.TotalCost.Equal(decimal.NewFromInt(1)))

	registry, err := env.service.Registry(ctx)
	require.NoError(t, err)
	assert.Equal(t, testOwner, registry.Owner)
	assert.True(t, registry.Fee.Equal(testFee))
	assert.Equal(t, int64(2), registry.TotalTokens)
}

// mapSaleCache in-process domain.SaleCache for cache freshness tests.
type mapSaleCache struct {
	mu      sync.Mutex
	entries map[string]*domain.Sale
}

func newMapSaleCache() *mapSaleCache {
	return &mapSaleCache{entries: make(map[string]*domain.Sale)}
}

func (c *mapSaleCache) Save(ctx context.Context, sale *domain.Sale) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *sale
	c.entries[sale.TokenID] = &copied
	return nil
}

func (c *mapSaleCache) Get(ctx context.Context, tokenID string) (*domain.Sale, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sale, ok := c.entries[tokenID]
	if !ok {
		return nil, nil
	}
	copied := *sale
	return &copied, nil
}

func (c *mapSaleCache) Delete(ctx context.Context, tokenID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, tokenID)
	return nil
}

// TestWritesRefreshSaleCache wires a cached read side next to the command
// service and checks every committed write overwrites the cached entry, so a
// reader who backfilled the cache before a purchase never observes a closed
// sale as still open.
func TestWritesRefreshSaleCache(t *testing.T) {
	store := memory.NewStore()
	saleCache := newMapSaleCache()
	ctx := context.Background()

	command := NewRegistryCommandService(
		store.SaleRepository(),
		store.LedgerRepository(),
		store.TreasuryRepository(),
		store.UnitOfWork(),
		&recordingPublisher{},
		saleCache,
		testOwner,
		testFee,
		nil,
	)
	cachedSales := persistence.NewCompositeSaleRepository(store.SaleRepository(), saleCache)
	query := NewRegistryQueryService(cachedSales, store.LedgerRepository(), testOwner, testFee)

	created, err := command.CreateSale(ctx, CreateSaleCommand{
		Caller:  testCreator,
		Name:    "My Token",
		Symbol:  "MTK",
		Payment: testFee,
	})
	require.NoError(t, err)

	// Warm the cache through the read path before any purchase.
	before, err := query.TokenToSale(ctx, created.TokenID)
	require.NoError(t, err)
	require.True(t, before.IsOpen)

	amount := decimal.NewFromInt(10_000)
	_, err = command.Buy(ctx, BuyCommand{
		Caller: testBuyer, TokenID: created.TokenID,
		Amount: amount, Payment: decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	after, err := query.TokenToSale(ctx, created.TokenID)
	require.NoError(t, err)
	assert.True(t, after.Sold.Equal(amount), "sold = %s", after.Sold)
	assert.True(t, after.IsOpen)

	_, err = command.Buy(ctx, BuyCommand{
		Caller: testBuyer, TokenID: created.TokenID,
		Amount: amount, Payment: decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	// The closing buy must be visible through the cached read path at once.
	closed, err := query.TokenToSale(ctx, created.TokenID)
	require.NoError(t, err)
	assert.False(t, closed.IsOpen)
	assert.True(t, closed.Raised.Equal(decimal.NewFromInt(3)))

	_, err = command.Deposit(ctx, DepositCommand{Caller: testCreator, TokenID: created.TokenID})
	require.NoError(t, err)

	deposited, err := query.TokenToSale(ctx, created.TokenID)
	require.NoError(t, err)
	assert.True(t, deposited.Deposited)
}

// TestSupplyConservation runs a mixed operation sequence and checks the ledger
// invariant sum(balances) == total supply after every step.
func TestSupplyConservation(t *testing.T) {
	env := newTestEnv()
	created := env.createSale(t)
	ctx := context.Background()

	checkSupply := func() {
		t.Helper()
		ledger, err := env.store.LedgerRepository().Get(ctx, created.TokenID)
		require.NoError(t, err)
		total := decimal.Zero
		for _, balance := range ledger.Balances {
			total = total.Add(balance)
		}
		assert.True(t, total.Equal(domain.TotalSupply), "supply sum = %s", total)
	}

	checkSupply()

	amount := decimal.NewFromInt(10_000)
	_, err := env.service.Buy(ctx, BuyCommand{
		Caller: testBuyer, TokenID: created.TokenID,
		Amount: amount, Payment: decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	checkSupply()

	_, err = env.service.Buy(ctx, BuyCommand{
		Caller: "carol", TokenID: created.TokenID,
		Amount: amount, Payment: decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	checkSupply()

	_, err = env.service.Deposit(ctx, DepositCommand{Caller: testCreator, TokenID: created.TokenID})
	require.NoError(t, err)
	checkSupply()
}
