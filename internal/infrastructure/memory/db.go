package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/catalog"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/order"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/token"
)

// DB is an in-process store for every table. Stored values are never mutated
// in place, so a transaction snapshot is a shallow copy of the maps.
// Writers are serialized; readers see committed or in-flight state of the
// single active writer.
type DB struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	accounts map[account.Role]map[string]*account.Account
	stores   map[string]*catalog.Store
	products map[string]*catalog.Product
	orders   map[string]*order.Order
	tokens   map[string]*token.RefreshToken
}

func NewDB() *DB {
	return &DB{
		accounts: map[account.Role]map[string]*account.Account{
			account.RoleAdmin:    {},
			account.RolePartner:  {},
			account.RoleCustomer: {},
		},
		stores:   make(map[string]*catalog.Store),
		products: make(map[string]*catalog.Product),
		orders:   make(map[string]*order.Order),
		tokens:   make(map[string]*token.RefreshToken),
	}
}

type txKey struct{}

func (db *DB) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*DB)
	return owner == db
}

type snapshot struct {
	accounts map[account.Role]map[string]*account.Account
	stores   map[string]*catalog.Store
	products map[string]*catalog.Product
	orders   map[string]*order.Order
	tokens   map[string]*token.RefreshToken
}

func (db *DB) snapshot() snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()
	accs := make(map[account.Role]map[string]*account.Account, len(db.accounts))
	for role, table := range db.accounts {
		accs[role] = maps.Clone(table)
	}
	return snapshot{
		accounts: accs,
		stores:   maps.Clone(db.stores),
		products: maps.Clone(db.products),
		orders:   maps.Clone(db.orders),
		tokens:   maps.Clone(db.tokens),
	}
}

func (db *DB) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.accounts = s.accounts
	db.stores = s.stores
	db.products = s.products
	db.orders = s.orders
	db.tokens = s.tokens
}

// WithinTx runs fn with exclusive write access and restores the previous
// state when fn fails or panics. Nested calls join the outer transaction.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if db.inTx(ctx) {
		return fn(ctx)
	}
	db.txMu.Lock()
	defer db.txMu.Unlock()

	snap := db.snapshot()
	defer func() {
		if r := recover(); r != nil {
			db.restore(snap)
			panic(r)
		}
		if err != nil {
			db.restore(snap)
		}
	}()
	return fn(context.WithValue(ctx, txKey{}, db))
}

func (db *DB) write(ctx context.Context, fn func() error) error {
	if !db.inTx(ctx) {
		db.txMu.Lock()
		defer db.txMu.Unlock()
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn()
}

func (db *DB) read(fn func()) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	fn()
}

func sortByCreated[T any](items []T, created func(T) (int64, string)) {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := created(items[i])
		tj, idj := created(items[j])
		if ti != tj {
			return ti < tj
		}
		return idi < idj
	})
}
