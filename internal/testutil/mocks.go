package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bimakw/fumble-tracker/internal/domain/entities"
)

// ErrMockCacheMiss is returned by MockPriceCache for unknown keys
var ErrMockCacheMiss = errors.New("mock cache miss")

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockChainClient is a mock implementation of providers.ChainClient
type MockChainClient struct {
	mu           sync.RWMutex
	lamports     uint64
	tokens       []entities.AssetBalance
	signatures   []string
	transactions map[string]*entities.TransactionRecord

	// Function hooks for custom behavior
	GetBalanceFunc       func(ctx context.Context, address string) (uint64, error)
	GetTokenBalancesFunc func(ctx context.Context, address string) ([]entities.AssetBalance, error)
	GetSignaturesFunc    func(ctx context.Context, address string, limit int) ([]string, error)
	GetTransactionFunc   func(ctx context.Context, signature string) (*entities.TransactionRecord, error)
	HealthCheckFunc      func(ctx context.Context) error

	// Call tracking
	Calls []MockCall
}

func NewMockChainClient() *MockChainClient {
	return &MockChainClient{
		transactions: make(map[string]*entities.TransactionRecord),
		Calls:        make([]MockCall, 0),
	}
}

func (m *MockChainClient) record(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}

func (m *MockChainClient) GetBalance(ctx context.Context, address string) (uint64, error) {
	m.record("GetBalance", address)

	if m.GetBalanceFunc != nil {
		return m.GetBalanceFunc(ctx, address)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lamports, nil
}

func (m *MockChainClient) GetTokenBalances(ctx context.Context, address string) ([]entities.AssetBalance, error) {
	m.record("GetTokenBalances", address)

	if m.GetTokenBalancesFunc != nil {
		return m.GetTokenBalancesFunc(ctx, address)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]entities.AssetBalance(nil), m.tokens...), nil
}

func (m *MockChainClient) GetSignatures(ctx context.Context, address string, limit int) ([]string, error) {
	m.record("GetSignatures", address, limit)

	if m.GetSignaturesFunc != nil {
		return m.GetSignaturesFunc(ctx, address, limit)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	end := limit
	if end > len(m.signatures) {
		end = len(m.signatures)
	}
	return append([]string(nil), m.signatures[:end]...), nil
}

func (m *MockChainClient) GetTransaction(ctx context.Context, signature string) (*entities.TransactionRecord, error) {
	m.record("GetTransaction", signature)

	if m.GetTransactionFunc != nil {
		return m.GetTransactionFunc(ctx, signature)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transactions[signature], nil
}

func (m *MockChainClient) HealthCheck(ctx context.Context) error {
	m.record("HealthCheck")

	if m.HealthCheckFunc != nil {
		return m.HealthCheckFunc(ctx)
	}
	return nil
}

// SetBalance sets the native balance returned by GetBalance
func (m *MockChainClient) SetBalance(lamports uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lamports = lamports
}

// AddTokens appends token holdings returned by GetTokenBalances
func (m *MockChainClient) AddTokens(balances ...entities.AssetBalance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, balances...)
}

// AddTransactions appends transactions in most-recent-first order
func (m *MockChainClient) AddTransactions(txs ...entities.TransactionRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range txs {
		tx := txs[i]
		m.signatures = append(m.signatures, tx.Signature)
		m.transactions[tx.Signature] = &tx
	}
}

// CallCount returns how many times method was invoked
func (m *MockChainClient) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// MockPriceProvider is a mock implementation of providers.PriceProvider
type MockPriceProvider struct {
	mu         sync.RWMutex
	historical map[string]decimal.Decimal
	current    map[string]decimal.Decimal
	contracts  map[string]string

	HistoricalPriceFunc  func(ctx context.Context, coinID string, day time.Time) (decimal.Decimal, error)
	CurrentPriceFunc     func(ctx context.Context, coinID string) (decimal.Decimal, error)
	CoinIDByContractFunc func(ctx context.Context, platform, contract string) (string, error)

	Calls []MockCall
}

func NewMockPriceProvider() *MockPriceProvider {
	return &MockPriceProvider{
		historical: make(map[string]decimal.Decimal),
		current:    make(map[string]decimal.Decimal),
		contracts:  make(map[string]string),
		Calls:      make([]MockCall, 0),
	}
}

func (m *MockPriceProvider) HistoricalPrice(ctx context.Context, coinID string, day time.Time) (decimal.Decimal, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "HistoricalPrice", Args: []interface{}{coinID, day}})
	m.mu.Unlock()

	if m.HistoricalPriceFunc != nil {
		return m.HistoricalPriceFunc(ctx, coinID, day)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	price, ok := m.historical[coinID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no historical price for %s", entities.ErrPriceUnavailable, coinID)
	}
	return price, nil
}

func (m *MockPriceProvider) CurrentPrice(ctx context.Context, coinID string) (decimal.Decimal, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "CurrentPrice", Args: []interface{}{coinID}})
	m.mu.Unlock()

	if m.CurrentPriceFunc != nil {
		return m.CurrentPriceFunc(ctx, coinID)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	price, ok := m.current[coinID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no current price for %s", entities.ErrPriceUnavailable, coinID)
	}
	return price, nil
}

func (m *MockPriceProvider) CoinIDByContract(ctx context.Context, platform, contract string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "CoinIDByContract", Args: []interface{}{platform, contract}})
	m.mu.Unlock()

	if m.CoinIDByContractFunc != nil {
		return m.CoinIDByContractFunc(ctx, platform, contract)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.contracts[contract]
	if !ok {
		return "", fmt.Errorf("%w: unknown contract %s", entities.ErrPriceUnavailable, contract)
	}
	return id, nil
}

// SetHistorical sets the historical price returned for coinID on any day
func (m *MockPriceProvider) SetHistorical(coinID string, price string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historical[coinID] = decimal.RequireFromString(price)
}

// SetCurrent sets the current price returned for coinID
func (m *MockPriceProvider) SetCurrent(coinID string, price string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current[coinID] = decimal.RequireFromString(price)
}

// SetContract maps a mint to a coin id for CoinIDByContract
func (m *MockPriceProvider) SetContract(contract, coinID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts[contract] = coinID
}

// CallCount returns how many times method was invoked
func (m *MockPriceProvider) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// MockPriceCache is a map-backed providers.PriceCache
type MockPriceCache struct {
	mu    sync.RWMutex
	items map[string][]byte

	GetFunc        func(ctx context.Context, key string, dest interface{}) error
	SetWithTTLFunc func(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

func NewMockPriceCache() *MockPriceCache {
	return &MockPriceCache{
		items: make(map[string][]byte),
	}
}

func (m *MockPriceCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key, dest)
	}

	m.mu.RLock()
	data, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return ErrMockCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *MockPriceCache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.SetWithTTLFunc != nil {
		return m.SetWithTTLFunc(ctx, key, value, ttl)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items[key] = data
	m.mu.Unlock()
	return nil
}

// Has reports whether key is cached
func (m *MockPriceCache) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[key]
	return ok
}

// Len returns the number of cached keys
func (m *MockPriceCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu sync.RWMutex

	Healthy bool
	Error   error
	Calls   []MockCall
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	var err error
	if !healthy {
		err = errors.New("health check failed")
	}
	return &MockHealthChecker{
		Healthy: healthy,
		Error:   err,
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: "HealthCheck", Args: nil})
	return m.Error
}

func (m *MockHealthChecker) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Healthy = healthy
	if healthy {
		m.Error = nil
	} else {
		m.Error = errors.New("health check failed")
	}
}
